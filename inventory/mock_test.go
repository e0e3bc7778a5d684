package inventory

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vctools/vcsearch/vim"
	"github.com/vctools/vcsearch/vim/transport"
)

// fakeVC is a mock SDK endpoint backed by an in-memory inventory graph.
// RetrieveProperties requests are parsed with the real envelope parser and
// answered from the graph, so traversal tests exercise the whole protocol
// stack below them.
type fakeVC struct {
	t *testing.T

	// rootChildren are the children of the root folder group-d1.
	rootChildren []vim.ObjectRef

	// dcName and dcVMFolder describe datacenters by ref.
	dcName     map[string]string
	dcVMFolder map[string]string

	// folderChildren maps folder ref to child references. Untyped children
	// (Type == "") exercise the prefix-classification fallback.
	folderChildren map[string][]vim.ObjectRef

	// vmProps maps vm ref to property path to value.
	vmProps map[string]map[string]string

	// folderFetches counts childEntity fetches per folder ref.
	folderFetches map[string]int

	// vmPropFetches counts how many times each vm ref appeared in a
	// VirtualMachine property request.
	vmPropFetches map[string]int
}

func newFakeVC(t *testing.T) *fakeVC {
	return &fakeVC{
		t:              t,
		dcName:         make(map[string]string),
		dcVMFolder:     make(map[string]string),
		folderChildren: make(map[string][]vim.ObjectRef),
		vmProps:        make(map[string]map[string]string),
		folderFetches:  make(map[string]int),
		vmPropFetches:  make(map[string]int),
	}
}

// addDatacenter registers a datacenter under the root folder.
func (f *fakeVC) addDatacenter(ref, name, vmFolder string) {
	f.rootChildren = append(f.rootChildren, vim.ObjectRef{Type: vim.TypeDatacenter, Value: ref})
	f.dcName[ref] = name
	f.dcVMFolder[ref] = vmFolder
}

// addVM registers a machine with a name and optional detail properties.
func (f *fakeVC) addVM(ref, name string, extra map[string]string) {
	props := map[string]string{"name": name}
	for k, v := range extra {
		props[k] = v
	}
	f.vmProps[ref] = props
}

func (f *fakeVC) start() (*vim.Client, *httptest.Server) {
	server := httptest.NewServer(http.HandlerFunc(f.handle))
	f.t.Cleanup(server.Close)
	return vim.NewClient(server.URL, transport.New()), server
}

func (f *fakeVC) handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		f.t.Errorf("read request: %v", err)
		return
	}
	body, err := vim.ParseEnvelope(raw)
	if err != nil {
		f.t.Errorf("request is not a valid envelope: %v", err)
		return
	}

	switch {
	case body.First(vim.OpRetrieveServiceContent) != nil:
		f.respond(w, `<RetrieveServiceContentResponse xmlns="urn:vim25"><returnval>`+
			`<rootFolder type="Folder">group-d1</rootFolder>`+
			`<propertyCollector type="PropertyCollector">propertyCollector</propertyCollector>`+
			`<sessionManager type="SessionManager">SessionManager</sessionManager>`+
			`<about><fullName>Mock vCenter</fullName><apiType>VirtualCenter</apiType><version>8.0.2</version><build>1</build></about>`+
			`</returnval></RetrieveServiceContentResponse>`)
	case body.First(vim.OpLogin) != nil:
		http.SetCookie(w, &http.Cookie{Name: transport.SessionCookieName, Value: "mock-session"})
		f.respond(w, `<LoginResponse xmlns="urn:vim25"><returnval><key>mock</key></returnval></LoginResponse>`)
	case body.First(vim.OpRetrieveProperties) != nil:
		f.respond(w, f.retrieveProperties(body.First(vim.OpRetrieveProperties)))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(envelope(`<soapenv:Fault><faultstring>unsupported operation</faultstring></soapenv:Fault>`)))
	}
}

func (f *fakeVC) respond(w http.ResponseWriter, inner string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = w.Write([]byte(envelope(inner)))
}

func envelope(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<soapenv:Body>` + inner + `</soapenv:Body></soapenv:Envelope>`
}

// retrieveProperties answers a parsed RetrieveProperties request from the
// graph.
func (f *fakeVC) retrieveProperties(op *vim.Node) string {
	spec := op.First("specSet")
	if spec == nil {
		f.t.Error("request has no specSet")
		return `<RetrievePropertiesResponse xmlns="urn:vim25"></RetrievePropertiesResponse>`
	}

	objType := ""
	var paths []string
	if ps := spec.First("propSet"); ps != nil {
		if tn := ps.First("type"); tn != nil {
			objType = strings.TrimSpace(tn.Text)
		}
		for _, p := range ps.All("pathSet") {
			paths = append(paths, strings.TrimSpace(p.Text))
		}
	}
	var refs []string
	for _, os := range spec.All("objectSet") {
		if obj := os.First("obj"); obj != nil {
			refs = append(refs, strings.TrimSpace(obj.Text))
		}
	}

	var b bytes.Buffer
	b.WriteString(`<RetrievePropertiesResponse xmlns="urn:vim25">`)
	for _, ref := range refs {
		switch objType {
		case vim.TypeFolder:
			f.folderFetches[ref]++
			b.WriteString(`<returnval><obj type="Folder">` + ref + `</obj>`)
			b.WriteString(`<propSet><name>childEntity</name><val xsi:type="ArrayOfManagedObjectReference">`)
			for _, child := range f.childrenOf(ref) {
				if child.Type != "" {
					b.WriteString(`<ManagedObjectReference type="` + child.Type + `">` + child.Value + `</ManagedObjectReference>`)
				} else {
					b.WriteString(`<ManagedObjectReference>` + child.Value + `</ManagedObjectReference>`)
				}
			}
			b.WriteString(`</val></propSet></returnval>`)
		case vim.TypeDatacenter:
			b.WriteString(`<returnval><obj type="Datacenter">` + ref + `</obj>`)
			b.WriteString(`<propSet><name>name</name><val xsi:type="xsd:string">` + f.dcName[ref] + `</val></propSet>`)
			b.WriteString(`<propSet><name>vmFolder</name><val xsi:type="ManagedObjectReference" type="Folder">` + f.dcVMFolder[ref] + `</val></propSet>`)
			b.WriteString(`</returnval>`)
		case vim.TypeVirtualMachine:
			f.vmPropFetches[ref]++
			props, ok := f.vmProps[ref]
			if !ok {
				f.t.Errorf("request for unknown vm %s", ref)
				continue
			}
			b.WriteString(`<returnval><obj type="VirtualMachine">` + ref + `</obj>`)
			for _, p := range paths {
				if v, ok := props[p]; ok {
					b.WriteString(`<propSet><name>` + p + `</name><val xsi:type="xsd:string">` + v + `</val></propSet>`)
				}
			}
			b.WriteString(`</returnval>`)
		default:
			f.t.Errorf("request for unexpected type %q", objType)
		}
	}
	b.WriteString(`</RetrievePropertiesResponse>`)
	return b.String()
}

func (f *fakeVC) childrenOf(ref string) []vim.ObjectRef {
	if ref == "group-d1" {
		return f.rootChildren
	}
	return f.folderChildren[ref]
}

package vim

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vctools/vcsearch/vim/transport"
)

// soapEnvelope wraps inner body XML in a server-style response envelope.
func soapEnvelope(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<soapenv:Body>` + inner + `</soapenv:Body>` +
		`</soapenv:Envelope>`
}

const serviceContentXML = `<RetrieveServiceContentResponse xmlns="urn:vim25"><returnval>` +
	`<rootFolder type="Folder">group-d1</rootFolder>` +
	`<propertyCollector type="PropertyCollector">propertyCollector</propertyCollector>` +
	`<sessionManager type="SessionManager">SessionManager</sessionManager>` +
	`<about>` +
	`<fullName>VMware vCenter Server 8.0.2 build-22385739</fullName>` +
	`<apiType>VirtualCenter</apiType>` +
	`<version>8.0.2</version>` +
	`<build>22385739</build>` +
	`</about>` +
	`</returnval></RetrieveServiceContentResponse>`

const faultXML = `<soapenv:Fault>` +
	`<faultcode>ServerFaultCode</faultcode>` +
	`<faultstring>Cannot complete login due to an incorrect user name or password.</faultstring>` +
	`</soapenv:Fault>`

// soapHandler routes requests by the operation element found in the body.
type soapHandler struct {
	t *testing.T

	// loginStatus lets tests force a failure on the Login call.
	loginStatus int
	loginBody   string

	// omitLoginCookie suppresses Set-Cookie on login.
	omitLoginCookie bool

	// retrieveProperties answers RetrieveProperties calls; nil means fault.
	retrieveProperties func(body string) string

	requests []string
}

func (h *soapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.t.Errorf("read request body: %v", err)
	}
	body := string(raw)

	switch {
	case strings.Contains(body, "<RetrieveServiceContent"):
		h.requests = append(h.requests, "RetrieveServiceContent")
		respond(w, http.StatusOK, soapEnvelope(serviceContentXML))
	case strings.Contains(body, "<Login"):
		h.requests = append(h.requests, "Login")
		if h.loginStatus != 0 && h.loginStatus != http.StatusOK {
			respond(w, h.loginStatus, h.loginBody)
			return
		}
		if !h.omitLoginCookie {
			http.SetCookie(w, &http.Cookie{Name: transport.SessionCookieName, Value: "52ed7a2e-test-session"})
		}
		respond(w, http.StatusOK, soapEnvelope(`<LoginResponse xmlns="urn:vim25"><returnval><key>52ed7a2e</key></returnval></LoginResponse>`))
	case strings.Contains(body, "<Logout"):
		h.requests = append(h.requests, "Logout")
		respond(w, http.StatusOK, soapEnvelope(`<LogoutResponse xmlns="urn:vim25"></LogoutResponse>`))
	case strings.Contains(body, "<CurrentTime"):
		h.requests = append(h.requests, "CurrentTime")
		respond(w, http.StatusOK, soapEnvelope(`<CurrentTimeResponse xmlns="urn:vim25"><returnval>2026-08-29T12:30:45.123456Z</returnval></CurrentTimeResponse>`))
	case strings.Contains(body, "<RetrieveProperties"):
		h.requests = append(h.requests, "RetrieveProperties")
		if h.retrieveProperties == nil {
			respond(w, http.StatusInternalServerError, soapEnvelope(faultXML))
			return
		}
		respond(w, http.StatusOK, soapEnvelope(h.retrieveProperties(body)))
	default:
		respond(w, http.StatusInternalServerError, soapEnvelope(faultXML))
	}
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// newTestClient starts a mock SDK server and returns a client wired to it.
func newTestClient(t *testing.T, h *soapHandler) (*Client, *httptest.Server) {
	t.Helper()
	h.t = t
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	tr := transport.New()
	return NewClient(server.URL, tr), server
}

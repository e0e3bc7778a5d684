package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/vctools/vcsearch/vim"
)

// MatchMode selects the name predicate applied to discovered machines.
type MatchMode int

const (
	// MatchContains is a case-insensitive substring test.
	MatchContains MatchMode = iota
	// MatchExact requires full string equality.
	MatchExact
)

// Property paths fetched per field. The name-only pass is cheap; the detail
// paths are fetched only for the matched subset.
const (
	pathName       = "name"
	pathPowerState = "runtime.powerState"
	pathUUID       = "config.uuid"
	pathVMXPath    = "config.files.vmPathName"
)

// Detail field keys as they appear in Record.Fields.
const (
	FieldPowerState = "power_state"
	FieldUUID       = "uuid"
	FieldPath       = "vmx_path"
)

// Options configures a search.
type Options struct {
	// Query is the name to look for.
	Query string

	// Mode selects exact or substring matching.
	Mode MatchMode

	// MaxResults caps the matched record count. Zero means no results;
	// negative means unlimited.
	MaxResults int

	// Optional detail fields. A field that is not requested is absent from
	// the records, not present-with-empty.
	IncludePowerState bool
	IncludeUUID       bool
	IncludePath       bool

	// Debug materializes traversal diagnostics.
	Debug bool
}

// Record is one matched machine: reference id, name, and datacenter
// attribution, plus whichever optional fields the caller requested.
type Record struct {
	Ref        string
	Name       string
	Datacenter string

	// Fields holds the requested optional fields. Keys exist only for
	// fields that were requested and resolved.
	Fields map[string]string
}

// matches applies the configured predicate.
func (o Options) matches(name string) bool {
	if o.Mode == MatchExact {
		return name == o.Query
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(o.Query))
}

// detailPaths returns the property paths for the requested optional fields.
func (o Options) detailPaths() []string {
	var paths []string
	if o.IncludePowerState {
		paths = append(paths, pathPowerState)
	}
	if o.IncludeUUID {
		paths = append(paths, pathUUID)
	}
	if o.IncludePath {
		paths = append(paths, pathVMXPath)
	}
	return paths
}

// Search discovers machines, filters them by name, and assembles the final
// records. An empty match set is a valid, non-error outcome. The returned
// diagnostics are nil unless opts.Debug is set.
func Search(ctx context.Context, c *vim.Client, opts Options) ([]Record, *Diagnostics, error) {
	var diag *Diagnostics
	if opts.Debug {
		diag = &Diagnostics{}
	}
	if opts.MaxResults == 0 {
		return nil, diag, nil
	}

	machines, err := Discover(ctx, c, opts.MaxResults, diag)
	if err != nil {
		return nil, diag, err
	}
	if len(machines) == 0 {
		return nil, diag, nil
	}

	// Cheap first pass: names only, for the full discovered set.
	refs := make([]string, len(machines))
	for i, m := range machines {
		refs[i] = m.Ref
	}
	named, err := c.RetrievePropertiesChunked(ctx, vim.TypeVirtualMachine, []string{pathName}, refs)
	if err != nil {
		return nil, diag, fmt.Errorf("search: fetch names: %w", err)
	}
	names := make(map[string]string, len(named))
	for _, oc := range named {
		names[oc.Ref.Value] = oc.Props[pathName].String()
	}

	// Filter in discovery order, truncated at the cap.
	var matched []Machine
	for _, m := range machines {
		m.Name = names[m.Ref]
		if !opts.matches(m.Name) {
			continue
		}
		matched = append(matched, m)
		if diag != nil && diag.FirstMatch == "" {
			diag.FirstMatch = m.Ref
		}
		if opts.MaxResults > 0 && len(matched) >= opts.MaxResults {
			break
		}
	}
	if len(matched) == 0 {
		return nil, diag, nil
	}

	// Expensive second pass: detail fields, restricted to the matched
	// subset only.
	details := make(map[string]map[string]vim.Value)
	if paths := opts.detailPaths(); len(paths) > 0 {
		matchedRefs := make([]string, len(matched))
		for i, m := range matched {
			matchedRefs[i] = m.Ref
		}
		// name rides along so the record can prefer the fresh value.
		detailed, err := c.RetrievePropertiesChunked(ctx, vim.TypeVirtualMachine, append([]string{pathName}, paths...), matchedRefs)
		if err != nil {
			return nil, diag, fmt.Errorf("search: fetch details: %w", err)
		}
		for _, oc := range detailed {
			details[oc.Ref.Value] = oc.Props
		}
	}

	records := make([]Record, 0, len(matched))
	for _, m := range matched {
		rec := Record{
			Ref:        m.Ref,
			Name:       m.Name,
			Datacenter: m.Datacenter,
		}
		props := details[m.Ref]
		if props != nil {
			if n := props[pathName].String(); n != "" {
				rec.Name = n
			}
		}
		fields := make(map[string]string)
		if opts.IncludePowerState {
			if v := props[pathPowerState].String(); v != "" {
				fields[FieldPowerState] = v
			}
		}
		if opts.IncludeUUID {
			if v := props[pathUUID].String(); v != "" {
				fields[FieldUUID] = v
			}
		}
		if opts.IncludePath {
			if v := props[pathVMXPath].String(); v != "" {
				fields[FieldPath] = v
			}
		}
		if len(fields) > 0 {
			rec.Fields = fields
		}
		records = append(records, rec)
	}

	return records, diag, nil
}

// Package inventory discovers virtual machines by walking the vCenter
// inventory tree breadth-first and matching them by name.
package inventory

import (
	"context"
	"fmt"

	"github.com/vctools/vcsearch/vim"
)

// maxSampleRefs caps the datacenter refs recorded in diagnostics.
const maxSampleRefs = 5

// Machine is a leaf object found during traversal, attributed to exactly
// one originating datacenter. Name is filled by the matching pass.
type Machine struct {
	Ref           string
	Datacenter    string
	DatacenterRef string
	Name          string
}

// Diagnostics summarizes a traversal for debugging. Materialized only when
// the caller's debug flag is set.
type Diagnostics struct {
	RootFolder      string
	DatacenterCount int
	SampleRefs      []string
	VMFolders       map[string]string
	FoldersVisited  int
	VMsDiscovered   int
	FirstMatch      string
}

// queueEntry is one pending container: a folder to expand plus the
// datacenter attribution it inherits.
type queueEntry struct {
	folder string
	dcName string
	dcRef  string
}

// Discover walks the inventory from the root folder through datacenters and
// nested folders to virtual machines. Breadth-first with an explicit queue:
// no container is fetched twice and no machine appears twice in the result,
// regardless of graph shape. When limit > 0 traversal stops as soon as that
// many machines have been discovered; a fresh call restarts from the root.
// diag may be nil.
func Discover(ctx context.Context, c *vim.Client, limit int, diag *Diagnostics) ([]Machine, error) {
	content, err := c.RetrieveServiceContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if diag != nil {
		diag.RootFolder = content.RootFolder.Value
		diag.VMFolders = make(map[string]string)
	}

	// Root folder children are the top-level groupings.
	roots, err := c.RetrieveProperties(ctx, vim.TypeFolder, []string{"childEntity"}, []string{content.RootFolder.Value})
	if err != nil {
		return nil, fmt.Errorf("discover: root children: %w", err)
	}

	var dcRefs []string
	for _, oc := range roots {
		for _, child := range oc.Props["childEntity"].References() {
			if vim.Classify(child) == vim.KindDatacenter {
				dcRefs = append(dcRefs, child.Value)
			}
		}
	}
	if diag != nil {
		diag.DatacenterCount = len(dcRefs)
		for _, ref := range dcRefs {
			if len(diag.SampleRefs) == maxSampleRefs {
				break
			}
			diag.SampleRefs = append(diag.SampleRefs, ref)
		}
	}
	if len(dcRefs) == 0 {
		return nil, nil
	}

	// One batched call resolves every datacenter's display name and its
	// machine-folder entry point.
	dcs, err := c.RetrievePropertiesChunked(ctx, vim.TypeDatacenter, []string{"name", "vmFolder"}, dcRefs)
	if err != nil {
		return nil, fmt.Errorf("discover: datacenters: %w", err)
	}

	var queue []queueEntry
	for _, oc := range dcs {
		folder, ok := oc.Props["vmFolder"].Reference()
		if !ok {
			continue
		}
		name := oc.Props["name"].String()
		queue = append(queue, queueEntry{folder: folder.Value, dcName: name, dcRef: oc.Ref.Value})
		if diag != nil {
			diag.VMFolders[oc.Ref.Value] = folder.Value
		}
	}

	visited := make(map[string]bool)
	seen := make(map[string]bool)
	var machines []Machine

	for len(queue) > 0 && (limit <= 0 || len(machines) < limit) {
		entry := queue[0]
		queue = queue[1:]

		// A folder reachable via multiple paths is expanded once.
		if visited[entry.folder] {
			continue
		}
		visited[entry.folder] = true
		if diag != nil {
			diag.FoldersVisited++
		}

		contents, err := c.RetrieveProperties(ctx, vim.TypeFolder, []string{"childEntity"}, []string{entry.folder})
		if err != nil {
			return nil, fmt.Errorf("discover: folder %s: %w", entry.folder, err)
		}

	children:
		for _, oc := range contents {
			for _, child := range oc.Props["childEntity"].References() {
				switch vim.Classify(child) {
				case vim.KindFolder:
					queue = append(queue, queueEntry{folder: child.Value, dcName: entry.dcName, dcRef: entry.dcRef})
				case vim.KindMachine:
					// First attribution wins.
					if seen[child.Value] {
						continue
					}
					seen[child.Value] = true
					machines = append(machines, Machine{
						Ref:           child.Value,
						Datacenter:    entry.dcName,
						DatacenterRef: entry.dcRef,
					})
					if limit > 0 && len(machines) >= limit {
						break children
					}
				}
			}
		}
	}

	if diag != nil {
		diag.VMsDiscovered = len(machines)
	}
	return machines, nil
}

// Package vcsearch provides a read-only client for the vCenter/ESXi legacy
// SOAP interface (vim25), focused on session management and name-based
// virtual machine discovery across the inventory tree.
//
// # Architecture
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  client/        High-level API: Config, TestConnection, │
//	│                 Search                                  │
//	├─────────────────────────────────────────────────────────┤
//	│  inventory/     Breadth-first traversal + name matching │
//	├─────────────────────────────────────────────────────────┤
//	│  vim/           SOAP envelopes, session, property       │
//	│                 collector                               │
//	├─────────────────────────────────────────────────────────┤
//	│  vim/transport  HTTPS transport, TLS policy, session    │
//	│                 cookie                                  │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	cfg := client.Config{
//	    Server:   "vcenter.example.com",
//	    Username: "administrator@vsphere.local",
//	    Password: "password",
//	}
//	c, err := client.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close(ctx)
//
//	info, err := c.TestConnection(ctx)
//	records, diag, err := c.Search(ctx, inventory.Options{
//	    Query: "web", Mode: inventory.MatchContains, MaxResults: 50,
//	})
package vcsearch

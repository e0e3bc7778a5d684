package vim

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RetrieveServiceContent fetches the bootstrap service descriptor. The
// descriptor is cached on the client for addressing later calls, but a fresh
// fetch always goes to the server: TestConnection relies on comparing the
// pre-auth and post-auth descriptors.
func (c *Client) RetrieveServiceContent(ctx context.Context) (*ServiceContent, error) {
	payload := `<` + OpRetrieveServiceContent + ` xmlns="` + NsVim25 + `">` +
		`<_this type="` + TypeServiceInstance + `">` + ServiceInstanceRef.Value + `</_this>` +
		`</` + OpRetrieveServiceContent + `>`

	body, err := c.call(ctx, OpRetrieveServiceContent, []byte(payload))
	if err != nil {
		return nil, err
	}

	rv, ok := result(body, OpRetrieveServiceContent)
	if !ok {
		return nil, &ProtocolError{Missing: "service content return value"}
	}

	content := &ServiceContent{
		RootFolder:        refFrom(rv.First("rootFolder")),
		PropertyCollector: refFrom(rv.First("propertyCollector")),
		SessionManager:    refFrom(rv.First("sessionManager")),
	}
	if about := rv.First("about"); about != nil {
		content.About = About{
			FullName: textOf(about.First("fullName")),
			APIType:  textOf(about.First("apiType")),
			Version:  textOf(about.First("version")),
			Build:    textOf(about.First("build")),
		}
	}
	if content.SessionManager.Value == "" {
		return nil, &ProtocolError{Missing: "session manager reference"}
	}

	c.content = content
	return content, nil
}

// Login authenticates with the session authority. The service descriptor is
// fetched first when not already cached. A 200 response that leaves no
// session token captured is an AuthenticationError, never silently ignored.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if c.content == nil {
		if _, err := c.RetrieveServiceContent(ctx); err != nil {
			return err
		}
	}

	payload := `<` + OpLogin + ` xmlns="` + NsVim25 + `">` +
		`<_this type="` + TypeSessionManager + `">` + escapeXML(c.content.SessionManager.Value) + `</_this>` +
		`<userName>` + escapeXML(username) + `</userName>` +
		`<password>` + escapeXML(password) + `</password>` +
		`</` + OpLogin + `>`

	// A token from a prior login must not satisfy the capture check below.
	c.transport.ClearSession()

	if _, err := c.call(ctx, OpLogin, []byte(payload)); err != nil {
		return err
	}

	if c.transport.Session() == "" {
		return &AuthenticationError{Reason: "login succeeded but no session cookie was returned"}
	}
	return nil
}

// Logout terminates the current session. Safe to call without a session;
// the server treats it as a no-op failure which is returned to the caller.
func (c *Client) Logout(ctx context.Context) error {
	if c.content == nil {
		if _, err := c.RetrieveServiceContent(ctx); err != nil {
			return err
		}
	}

	payload := `<` + OpLogout + ` xmlns="` + NsVim25 + `">` +
		`<_this type="` + TypeSessionManager + `">` + escapeXML(c.content.SessionManager.Value) + `</_this>` +
		`</` + OpLogout + `>`

	_, err := c.call(ctx, OpLogout, []byte(payload))
	return err
}

// CurrentTime reads the server clock from the ServiceInstance. Usable before
// login; a cheap liveness probe.
func (c *Client) CurrentTime(ctx context.Context) (time.Time, error) {
	payload := `<` + OpCurrentTime + ` xmlns="` + NsVim25 + `">` +
		`<_this type="` + TypeServiceInstance + `">` + ServiceInstanceRef.Value + `</_this>` +
		`</` + OpCurrentTime + `>`

	body, err := c.call(ctx, OpCurrentTime, []byte(payload))
	if err != nil {
		return time.Time{}, err
	}

	rv, ok := result(body, OpCurrentTime)
	if !ok {
		return time.Time{}, &ProtocolError{Missing: "current time return value"}
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(rv.Text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: unparseable server time: %w", OpCurrentTime, err)
	}
	return t, nil
}

// TestConnection validates connectivity end to end: fetch the service
// descriptor, authenticate, and fetch the descriptor again so the summary
// reflects the authenticated identity rather than the pre-auth stub. Any
// failure at any step propagates unchanged; there is no partial result.
func (c *Client) TestConnection(ctx context.Context, username, password string) (*ConnectionInfo, error) {
	if _, err := c.RetrieveServiceContent(ctx); err != nil {
		return nil, err
	}
	if err := c.Login(ctx, username, password); err != nil {
		return nil, err
	}
	content, err := c.RetrieveServiceContent(ctx)
	if err != nil {
		return nil, err
	}

	return &ConnectionInfo{
		Connected: true,
		APIType:   content.About.APIType,
		Product:   content.About.FullName,
		Version:   content.About.Version,
		Build:     content.About.Build,
	}, nil
}

// refFrom builds an ObjectRef from a reference-shaped node: the type tag is
// an attribute, the id is character data.
func refFrom(n *Node) ObjectRef {
	if n == nil {
		return ObjectRef{}
	}
	return ObjectRef{Type: n.Attr("type"), Value: strings.TrimSpace(n.Text)}
}

func textOf(n *Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

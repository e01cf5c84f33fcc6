// Package functions provides a notifier.Dispatcher that invokes a hosted edge
// function over HTTP, authenticated with a service key.
package functions

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"leadintake/pkg/domain"
	"leadintake/pkg/notifier"
	"leadintake/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// maxErrorBody bounds how much of a response body is read from the gateway.
const maxErrorBody = 1 << 10

// Client invokes functions at <baseURL>/functions/v1/<name>. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the functions gateway
	baseURL    string       // baseURL is the project URL without a trailing slash
	serviceKey string       // serviceKey is sent as the bearer token
}

// EncodeNotification writes the function payload. An empty interest is sent
// as null.
func EncodeNotification(e *jx.Encoder, n domain.Notification) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(n.Name)
	e.FieldStart("email")
	e.Str(n.Email)
	e.FieldStart("phone")
	e.Str(n.Phone)
	e.FieldStart("interestedTraining")
	if n.InterestedTraining == "" {
		e.Null()
	} else {
		e.Str(n.InterestedTraining)
	}
	e.FieldStart("notificationEmail")
	e.Str(n.NotificationEmail)
	e.ObjEnd()
}

// functionError extracts the "error" field functions use to report failures
// with a 2xx status. Bodies that are not JSON objects carry no error.
func functionError(body []byte) string {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return ""
	}

	var msg string
	_ = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "error" {
			return d.Skip()
		}
		switch d.Next() {
		case jx.String:
			s, err := d.Str()
			msg = s

			return err
		case jx.Null:
			return d.Null()
		default:
			raw, err := d.Raw()
			msg = raw.String()

			return err
		}
	})

	return msg
}

// Invoke posts notification to the named function.
func (c *Client) Invoke(ctx context.Context, functionName string, notification domain.Notification) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	EncodeNotification(e, notification)

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.baseURL+"/functions/v1/"+functionName,
		bytes.NewReader(e.Bytes()))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return serrors.With(serrors.ErrRateLimited, "function %s rate limited: %s",
			functionName, strings.TrimSpace(string(b)))
	}
	if resp.StatusCode == http.StatusNotFound {
		return serrors.With(serrors.ErrNotFound, "function %s not found", functionName)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("function %s failed with status %d: %s",
			functionName, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if msg := functionError(b); msg != "" {
		return errors.Errorf("function %s reported error: %s", functionName, msg)
	}

	return nil
}

// Ensure Client conforms to the notifier.Dispatcher interface at compile time.
var _ notifier.Dispatcher = (*Client)(nil)

// New constructs a Client for the functions gateway at baseURL.
func New(httpClient *http.Client, baseURL, serviceKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
	}
}

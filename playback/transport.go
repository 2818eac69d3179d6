package playback

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/flanksource/understudy/fixtures"
)

// Transport intercepts HTTP requests against an action, for the flows that
// fetch over HTTP instead of shelling out, like log archives. The
// intercepted command is "METHOD url".
type Transport struct {
	session *Session
	action  string
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport returns an http.RoundTripper that plays action back.
func (s *Session) Transport(action string) *Transport {
	return &Transport{session: s, action: action}
}

// Client returns an http.Client backed by the transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip answers the request from the action's next rule. Text responses
// are served as text/plain, structured ones as application/json, and a
// false response becomes a 502. Sequencing errors fail the round trip
// itself.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	command := req.Method + " " + req.URL.String()
	rsp, err := t.session.Intercept(t.action, command)
	if err != nil {
		if errors.Is(err, ErrCommandFailed) {
			return t.response(req, http.StatusBadGateway, "", "text/plain; charset=utf-8"), nil
		}
		return nil, err
	}

	contentType := "text/plain; charset=utf-8"
	if rsp.Kind == fixtures.Structured {
		contentType = "application/json"
	}
	return t.response(req, http.StatusOK, rsp.Stdout(), contentType), nil
}

func (t *Transport) response(req *http.Request, status int, body, contentType string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", contentType)
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

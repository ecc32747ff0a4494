// Package verify asks an external "am I connected" service which exit node
// the host's traffic leaves through.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxResponseSize caps how much of the endpoint's body is read.
const maxResponseSize = 1 << 20

// Result is the exit-node identity observed by one verification request.
type Result struct {
	Target        string // interface the caller expected, may be empty
	IP            string
	Country       string
	City          string
	Longitude     float64
	Latitude      float64
	ServerType    string
	Blacklisted   bool
	ExitIP        string
	ExitHostname  string
	MatchesTarget bool
}

// NetworkError means the request could not complete or the endpoint
// answered with a non-2xx status.
type NetworkError struct {
	URL    string
	Status int // zero when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("verify %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("verify %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError means the body was not the expected JSON document.
type MalformedResponseError struct {
	Field string // missing or invalid field, empty for unparseable JSON
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed verification response: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed verification response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

var errMissing = errors.New("missing")

// Verifier fetches and parses the verification document.
type Verifier struct {
	Endpoint string
	Client   *http.Client
	Logger   *slog.Logger
}

// New creates a Verifier. A non-nil resolver makes the endpoint host resolve
// through that DNS server and disables proxies from the environment.
func New(endpoint string, timeout time.Duration, resolver *Resolver, logger *slog.Logger) *Verifier {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if resolver != nil {
		transport.DialContext = resolver.DialContext
		transport.Proxy = nil
	}
	return &Verifier{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout, Transport: transport},
		Logger:   logger,
	}
}

// Verify performs exactly one GET against the endpoint. expected is recorded
// in the result for reporting; it is not cross-checked against the exit IP.
func (v *Verifier) Verify(ctx context.Context, expected string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: v.Endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: v.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: v.Endpoint, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &NetworkError{URL: v.Endpoint, Err: err}
	}

	res, err := Parse(body)
	if err != nil {
		return nil, err
	}
	res.Target = expected
	if v.Logger != nil {
		v.Logger.Debug("verification fetched", "ip", res.IP, "exit_ip", res.ExitIP, "target", expected)
	}
	return res, nil
}

// response mirrors the endpoint's JSON. Pointer fields are required.
type response struct {
	IP          *string  `json:"ip"`
	Country     *string  `json:"country"`
	City        *string  `json:"city"`
	Longitude   *float64 `json:"longitude"`
	Latitude    *float64 `json:"latitude"`
	ServerType  string   `json:"mullvad_server_type"`
	Blacklisted struct {
		Blacklisted bool `json:"blacklisted"`
	} `json:"blacklisted"`
	ExitIP       json.RawMessage `json:"mullvad_exit_ip"`
	ExitHostname string          `json:"mullvad_exit_ip_hostname"`
}

// Parse decodes a verification document. ip, country and mullvad_exit_ip are
// required. mullvad_exit_ip may be an address string or a boolean; true
// means the observed ip is the exit address.
func Parse(body []byte) (*Result, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if r.IP == nil {
		return nil, &MalformedResponseError{Field: "ip", Err: errMissing}
	}
	if r.Country == nil {
		return nil, &MalformedResponseError{Field: "country", Err: errMissing}
	}
	exitIP, err := parseExitIP(r.ExitIP, *r.IP)
	if err != nil {
		return nil, &MalformedResponseError{Field: "mullvad_exit_ip", Err: err}
	}

	res := &Result{
		IP:           *r.IP,
		Country:      *r.Country,
		ServerType:   r.ServerType,
		Blacklisted:  r.Blacklisted.Blacklisted,
		ExitIP:       exitIP,
		ExitHostname: r.ExitHostname,
	}
	if r.City != nil {
		res.City = *r.City
	}
	if r.Longitude != nil {
		res.Longitude = *r.Longitude
	}
	if r.Latitude != nil {
		res.Latitude = *r.Latitude
	}
	res.MatchesTarget = res.ExitIP != ""
	return res, nil
}

func parseExitIP(raw json.RawMessage, observed string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errMissing
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return observed, nil
		}
		return "", nil
	}
	return "", fmt.Errorf("unexpected value %s", raw)
}

package verify_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/egorlepa/mullctl/internal/verify"
)

// startDNS serves A records from records on a local UDP port.
func startDNS(t *testing.T, records map[string]string) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	srv := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			q := r.Question[0]
			if ip, ok := records[q.Name]; ok && q.Qtype == dns.TypeA {
				m.Answer = append(m.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.ParseIP(ip),
				})
			} else {
				m.Rcode = dns.RcodeNameError
			}
			w.WriteMsg(m)
		}),
	}
	started := make(chan struct{})
	srv.NotifyStartedFunc = func() { close(started) }
	go srv.ActivateAndServe()
	<-started
	t.Cleanup(func() { srv.Shutdown() })
	return pc.LocalAddr().String()
}

func TestResolverResolve(t *testing.T) {
	addr := startDNS(t, map[string]string{"am.i.mullvad.test.": "10.64.0.7"})
	r := verify.NewResolver(addr)

	ips, err := r.Resolve(context.Background(), "am.i.mullvad.test")
	if err != nil {
		t.Fatal(err)
	}
	if len(ips) != 1 || ips[0].String() != "10.64.0.7" {
		t.Errorf("ips = %v", ips)
	}

	if _, err := r.Resolve(context.Background(), "nowhere.test"); err == nil {
		t.Error("expected NXDOMAIN error")
	}
}

func TestNewResolverDefaultPort(t *testing.T) {
	if got := verify.NewResolver("10.64.0.1").Server; got != "10.64.0.1:53" {
		t.Errorf("Server = %q", got)
	}
	if got := verify.NewResolver("10.64.0.1:5353").Server; got != "10.64.0.1:5353" {
		t.Errorf("Server = %q", got)
	}
}

func TestVerifyThroughResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"1.2.3.4","country":"SE","mullvad_exit_ip":"1.2.3.4"}`))
	}))
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL)
	_, port, _ := net.SplitHostPort(u.Host)

	addr := startDNS(t, map[string]string{"am.i.mullvad.test.": "127.0.0.1"})
	v := verify.New("http://am.i.mullvad.test:"+port+"/json", time.Second, verify.NewResolver(addr), nil)

	res, err := v.Verify(context.Background(), "mullvad-se-sto")
	if err != nil {
		t.Fatal(err)
	}
	if !res.MatchesTarget {
		t.Errorf("MatchesTarget = false, want true")
	}
}

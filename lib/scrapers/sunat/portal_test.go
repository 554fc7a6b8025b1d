package sunat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"sunatscraper/lib/scrapers/sunat/captcha"
	"sunatscraper/lib/telemetry"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const landingPage = `<html><head>
<script type="text/javascript">
document.cookie = "ITMRCONSRUCSESSION=abc123; path=/";
document.cookie="TS01=xyz; path=/ol-ti-itmrconsruc";
</script>
</head><body><form name="mainForm"></form></body></html>`

type submission struct {
	form    url.Values
	referer string
	cookie  string
}

// fakePortal is an in-memory "Consulta RUC" portal. It records every request
// it receives.
type fakePortal struct {
	mu          sync.Mutex
	landings    int
	captchas    []string
	submissions []submission

	landingStatus func(n int) int
	captchaStatus int
	// respond returns the status and the utf-8 page for the nth submission,
	// pages are sent latin-1 encoded.
	respond func(form url.Values, n int) (int, string)
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		respond: func(form url.Values, n int) (int, string) {
			return http.StatusOK, detailPage(form.Get("nroRuc"), "ACME SAC")
		},
	}
}

func (p *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case LandingPath:
		p.mu.Lock()
		p.landings++
		n, landingStatus := p.landings, p.landingStatus
		p.mu.Unlock()
		status := http.StatusOK
		if landingStatus != nil {
			status = landingStatus(n)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprint(w, landingPage)
	case captcha.ImagePath:
		p.mu.Lock()
		p.captchas = append(p.captchas, r.URL.Query().Get("nmagic"))
		status := p.captchaStatus
		p.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG"))
	case SubmitPath:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		cookie := ""
		if c, err := r.Cookie("ITMRCONSRUCSESSION"); err == nil {
			cookie = c.Value
		}
		p.mu.Lock()
		p.submissions = append(p.submissions, submission{
			form:    r.PostForm,
			referer: r.Header.Get("Referer"),
			cookie:  cookie,
		})
		n := len(p.submissions)
		p.mu.Unlock()

		// respond runs unlocked so that slow responses overlap
		status, page := p.respond(r.PostForm, n)
		encoded, err := charmap.ISO8859_1.NewEncoder().String(page)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		w.WriteHeader(status)
		fmt.Fprint(w, encoded)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *fakePortal) counts() (landings, captchas, submissions int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.landings, len(p.captchas), len(p.submissions)
}

func (p *fakePortal) total() int {
	landings, captchas, submissions := p.counts()
	return landings + captchas + submissions
}

func (p *fakePortal) submission(i int) submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submissions[i]
}

func (p *fakePortal) nonce(i int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.captchas[i]
}

type fixedSolver string

func (s fixedSolver) Solve(context.Context, captcha.Image) (string, error) {
	return string(s), nil
}

func newTestClient(t *testing.T, portal *fakePortal, configure ...func(*Options)) (*Client, *telemetry.Recorder, string) {
	t.Helper()
	server := httptest.NewServer(portal)
	t.Cleanup(server.Close)

	tel := &telemetry.Recorder{}
	opts := Options{
		BaseURL:           server.URL,
		RequestsPerSecond: -1,
		Solver:            fixedSolver("AB12"),
		Telemetry:         tel,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client, tel, server.URL
}

func detailPage(ruc, name string) string {
	return fmt.Sprintf(`<html><body>
<table>
  <tr><td class="bgn">Número de RUC:</td><td>%s - %s</td></tr>
  <tr><td class="bgn">Estado del Contribuyente:</td><td>ACTIVO</td></tr>
  <tr><td class="bgn">Condición del Contribuyente:</td><td>HABIDO</td></tr>
  <tr><td class="bgn">Domicilio Fiscal:</td><td>AV. TEST 123</td></tr>
</table>
</body></html>`, ruc, name)
}

func listPage(rows ...[3]string) string {
	out := `<html><body><div class="list-group">`
	for _, row := range rows {
		out += fmt.Sprintf(`
<a href="#" class="list-group-item clearfix aRucs">
  <h4 class="list-group-item-heading">RUC: %s</h4>
  <h4 class="list-group-item-heading">%s</h4>
  <p class="list-group-item-text">Ubicación: %s</p>
  <p class="list-group-item-text">Estado: ACTIVO</p>
</a>`, row[0], row[1], row[2])
	}
	return out + `</div></body></html>`
}

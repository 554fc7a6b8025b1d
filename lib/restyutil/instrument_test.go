package restyutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu    sync.Mutex
	dumps map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dumps[id] = contents
}

func TestInstrumentClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	out := &memoryOutput{dumps: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, out)

	_, err := client.R().
		SetFormData(map[string]string{"accion": "consPorRuc"}).
		Post(server.URL + "/cl-ti-itmrconsruc/jcrS00Alias")
	require.NoError(t, err)

	dump, ok := out.dumps["0001"]
	require.True(t, ok)
	require.Contains(t, dump, "POST "+server.URL+"/cl-ti-itmrconsruc/jcrS00Alias")
	require.Contains(t, dump, "accion=consPorRuc")
	require.Contains(t, dump, "<html>ok</html>")
}

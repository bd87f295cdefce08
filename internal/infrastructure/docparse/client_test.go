package docparse

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestParseDecodesServiceReply(t *testing.T) {
	t.Parallel()

	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"subjects": {"101": "Mathematics I"},
			"results": [{
				"institution_code": "164",
				"institution_name": "USIT",
				"batch": "2018",
				"roll_num": "41514904918",
				"student_name": "Student A",
				"results": [{"examination_name": "BCA FIRST SEMESTER", "semester": "01", "marks": {}}]
			}]
		}`))
	}))
	defer server.Close()

	client := New(resty.New().SetTimeout(5*time.Second), server.URL)

	subjects, records, err := client.Parse(context.Background(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 fake", string(received))
	require.Equal(t, "Mathematics I", subjects["101"])
	require.Len(t, records, 1)
	require.Equal(t, "41514904918", records[0].RollNum)
	require.True(t, records[0].Addressable())
	require.Len(t, records[0].Results, 1)
}

func TestParseErrorsOnBadStatusOrBody(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "parser crashed", http.StatusInternalServerError)
	}))
	defer failing.Close()

	client := New(resty.New().SetTimeout(5*time.Second), failing.URL)
	_, _, err := client.Parse(context.Background(), []byte("payload"))
	require.Error(t, err)

	garbled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer garbled.Close()

	client = New(resty.New().SetTimeout(5*time.Second), garbled.URL)
	_, _, err = client.Parse(context.Background(), []byte("payload"))
	require.Error(t, err)
}

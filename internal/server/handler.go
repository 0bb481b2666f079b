package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/models"
	"github.com/sangnt1552314/ytscout/internal/services"
	"go.uber.org/zap"
)

const (
	defaultQuery   = "musicians strategy"
	defaultMinSubs = 1000
	defaultMaxSubs = 10000

	maxExportBytes = 4 << 20
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"latest": func(r models.ChannelRecord) string {
		if r.LatestUpload == nil {
			return ""
		}
		return r.LatestUpload.UTC().Format(services.LatestVideoLayout)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>YouTube Small Channels Finder</title></head>
<body>
<h1>YouTube Small Channels Finder</h1>
<form action="/search" method="get">
  <label>Search query <input type="text" name="q" value="{{.Query}}"></label>
  <label>Minimum Subscribers <input type="number" name="min" min="0" max="1000000" value="{{.MinSubs}}"></label>
  <label>Maximum Subscribers <input type="number" name="max" min="0" max="1000000" value="{{.MaxSubs}}"></label>
  <button type="submit">Search</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Result}}
<p>Found {{len .Result.Records}} channels!</p>
<form action="/export" method="post">
  <input type="hidden" name="csv" value="{{.ExportCSV}}">
  <button type="submit">Download CSV</button>
</form>
<table>
<tr><th>Channel Title</th><th>Subscribers</th><th>Videos</th><th>Latest Video</th><th>Channel Link</th></tr>
{{range .Result.Records}}<tr><td>{{.Title}}</td><td>{{.SubscriberCount}}</td><td>{{.VideoCount}}</td><td>{{latest .}}</td><td><a href="{{.ChannelURL}}">{{.ChannelURL}}</a></td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))

type pageData struct {
	Query       string
	MinSubs     uint64
	MaxSubs     uint64
	Result      *models.SearchResult
	ExportCSV   string
	Error       string
}

type handler struct {
	searcher Searcher
	logger   *zap.Logger
	limit    int
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageData{
		Query:   defaultQuery,
		MinSubs: defaultMinSubs,
		MaxSubs: defaultMaxSubs,
	})
}

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	data := pageData{Query: req.Query, MinSubs: req.MinSubs, MaxSubs: req.MaxSubs}
	if err != nil {
		data.Error = err.Error()
		h.render(w, http.StatusBadRequest, data)
		return
	}

	result, err := h.searcher.FindChannels(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		h.logger.Error("search failed", zap.Error(err), zap.Int("status", status))
		data.Error = "search failed: " + err.Error()
		h.render(w, status, data)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, result.Records); err != nil {
		h.logger.Error("failed to encode csv", zap.Error(err))
		data.Error = "failed to encode csv: " + err.Error()
		h.render(w, http.StatusInternalServerError, data)
		return
	}

	data.Result = result
	data.ExportCSV = buf.String()
	h.render(w, http.StatusOK, data)
}

// handleExport streams back the CSV embedded in the result page, so the
// download holds exactly the rows that were shown.
func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxExportBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid export form: "+err.Error(), http.StatusBadRequest)
		return
	}

	records, err := services.ReadCSV(strings.NewReader(r.PostForm.Get("csv")))
	if err != nil {
		h.logger.Warn("rejected export payload", zap.Error(err))
		http.Error(w, "invalid export data: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFileName))
	if err := services.WriteCSV(w, records); err != nil {
		h.logger.Error("failed to write csv response", zap.Error(err))
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) parseRequest(r *http.Request) (models.SearchRequest, error) {
	q := r.URL.Query()
	req := models.SearchRequest{Query: q.Get("q"), Limit: h.limit}

	var err error
	if req.MinSubs, err = parseSubs(q.Get("min"), defaultMinSubs); err != nil {
		return req, goerr.Wrap(err, "invalid minimum subscribers")
	}
	if req.MaxSubs, err = parseSubs(q.Get("max"), defaultMaxSubs); err != nil {
		return req, goerr.Wrap(err, "invalid maximum subscribers")
	}
	if err := req.ValidateInput(); err != nil {
		return req, err
	}
	return req, nil
}

func parseSubs(raw string, fallback uint64) (uint64, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if n > models.MaxSubscribers {
		return 0, goerr.New("value exceeds 1000000", goerr.V("value", n))
	}
	return n, nil
}

func statusFor(err error) int {
	if errors.Is(err, models.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func (h *handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

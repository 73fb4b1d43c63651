package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

const (
	oneHour           = 60 * 60
	searchCacheExpire = oneHour
)

type Handler struct {
	catalog *Catalog
	cache   *freecache.Cache
}

func NewHandler(catalog *Catalog) *Handler {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &Handler{
		catalog: catalog,
		cache:   freecache.NewCache(cacheSize),
	}
}

// HandleList serves GET /exercises?search=<term>&muscle_groups=a,b
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	var groups []string
	for _, g := range strings.Split(r.URL.Query().Get("muscle_groups"), ",") {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)

	cacheKey := []byte(fmt.Sprintf("search::%s::groups::%s", search, strings.Join(groups, ",")))
	if cached, err := h.cache.Get(cacheKey); err == nil {
		log.Tracef("exercises search [%s] served from cache", cacheKey)
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	entriesJson, err := json.Marshal(h.catalog.Search(search, groups))
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	if err := h.cache.Set(cacheKey, entriesJson, searchCacheExpire); err != nil {
		log.Warnf("cache exercises search [%s]: %s", cacheKey, err)
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesJson)
}

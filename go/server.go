package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/rules"
	"github.com/rmmh/worldshift/go/store"
	"github.com/rmmh/worldshift/go/translate"
	"github.com/rmmh/worldshift/go/versions"
)

const maxBody = 64 << 20

type workItem struct {
	dir  translate.Direction
	key  translate.VersionKey
	doc  *store.Document
	out  *store.Document
	err  error
	done chan struct{}
}

type server struct {
	log      *slog.Logger
	engine   *translate.Engine
	provider translate.Provider
	versions *versions.Table
	// nil when no chunk database is configured
	source  *storeSource
	metrics *metrics

	workQueue chan *workItem
}

func newServer(log *slog.Logger, provider translate.Provider, table *versions.Table, source *storeSource, workers int) *server {
	s := &server{
		log:       log,
		engine:    translate.New(log),
		provider:  provider,
		versions:  table,
		source:    source,
		metrics:   newMetrics(),
		workQueue: make(chan *workItem),
	}
	for range max(workers, 1) {
		go s.translateWorker()
	}
	return s
}

func (s *server) translateWorker() {
	for item := range s.workQueue {
		start := time.Now()
		item.out, item.err = s.translate(item)
		s.metrics.observe(item.dir.String(), start, item.err)
		close(item.done)
	}
}

func (s *server) translate(item *workItem) (*store.Document, error) {
	c, pal, err := item.doc.Chunk()
	if err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	// stored neighbors are version specific; out of universal they are
	// read fully translated under their own version
	var neighbors translate.NeighborResolver
	if s.source != nil {
		if item.dir == translate.ToUniversal {
			neighbors = s.engine.Neighbors(s.source, item.dir, item.key, s.provider, c.CX, c.CZ)
		} else {
			neighbors = s.engine.UniversalNeighbors(s.source, s.provider, c.CX, c.CZ)
		}
	}
	if item.dir == translate.ToUniversal {
		c, pal, err = s.engine.ToUniversal(item.key, s.provider, c, pal, neighbors, true)
	} else {
		c, pal, err = s.engine.FromUniversal(item.key, s.provider, c, pal, neighbors, true)
	}
	if err != nil {
		return nil, err
	}
	return store.NewDocument(c, pal)
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, rules.ErrUnknownVersion):
		return http.StatusNotFound
	case errors.Is(err, translate.ErrUnsupported):
		return http.StatusUnprocessableEntity
	}
	var ne *translate.NeighborError
	if errors.As(err, &ne) {
		return http.StatusFailedDependency
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v, gzipped if the client accepts it.
func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, id string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Cache-Control", "no-cache")
	var out io.Writer = w
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		out = gz
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(out).Encode(v); err != nil {
		s.log.Warn("writing response", "request", id, "path", r.URL.Path, "err", err)
	}
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, id string, err error) {
	status := statusFor(err)
	s.log.Warn("request failed", "request", id, "path", r.URL.Path, "status", status, "err", err)
	s.writeJSON(w, r, id, status, map[string]string{"error": err.Error()})
}

func (s *server) translateHandler(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	vars := mux.Vars(r)
	dir, err := translate.ParseDirection(vars["direction"])
	if err != nil {
		s.fail(w, r, id, errors.Wrap(errBadRequest, err.Error()))
		return
	}
	key, err := parseVersionKey(s.versions, vars["platform"]+":"+vars["version"])
	if err != nil {
		s.fail(w, r, id, errors.Wrap(errBadRequest, err.Error()))
		return
	}
	var doc store.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&doc); err != nil {
		s.fail(w, r, id, errors.Wrapf(errBadRequest, "decoding chunk: %v", err))
		return
	}

	item := &workItem{dir: dir, key: key, doc: &doc, done: make(chan struct{})}
	s.workQueue <- item
	<-item.done
	if item.err != nil {
		s.fail(w, r, id, item.err)
		return
	}
	s.log.Debug("translated chunk", "request", id, "direction", dir.String(), "version", key.String(),
		"cx", doc.CX, "cz", doc.CZ, "palette", len(item.out.Palette))
	s.writeJSON(w, r, id, http.StatusOK, item.out)
}

type chunkVersionResponse struct {
	Game         string            `json:"game"`
	ChunkVersion int               `json:"chunk_version"`
	Range        [2]string         `json:"range"`
	Features     versions.Features `json:"features"`
}

func (s *server) chunkVersionHandler(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	game, err := versions.ParseGameVersion(mux.Vars(r)["game"])
	if err != nil {
		s.fail(w, r, id, errors.Wrap(errBadRequest, err.Error()))
		return
	}
	cv, ok := s.versions.GameToChunkVersion(game)
	if !ok {
		s.fail(w, r, id, errors.Wrapf(rules.ErrUnknownVersion, "game version %s", game))
		return
	}
	rng, _ := s.versions.Range(cv)
	features, _ := versions.LevelDBFeatures(cv)
	s.writeJSON(w, r, id, http.StatusOK, chunkVersionResponse{
		Game:         game.String(),
		ChunkVersion: cv,
		Range:        [2]string{rng.Min.String(), rng.Max.String()},
		Features:     features,
	})
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/translate/{direction}/{platform}/{version}", s.translateHandler).Methods(http.MethodPost)
	r.HandleFunc("/chunk-version/{game}", s.chunkVersionHandler).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler())
	return r
}

func serve(cfg *Config, log *slog.Logger) error {
	reg := rules.NewRegistry(log)
	if cfg.Rules != "" {
		if err := reg.LoadDir(cfg.Rules); err != nil {
			return err
		}
	}
	table, err := loadVersionTable(cfg.VersionTable)
	if err != nil {
		return err
	}
	var source *storeSource
	if cfg.Store != "" {
		if cfg.StorePlatform == "" {
			return errors.New("store_platform must be set with store")
		}
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		source = &storeSource{st, cfg.StorePlatform}
	}

	s := newServer(log, reg, table, source, cfg.Workers)
	srv := &http.Server{
		Handler:      s.router(),
		Addr:         cfg.ListenAddr(),
		WriteTimeout: 120 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	log.Info("listening", "addr", srv.Addr, "workers", max(cfg.Workers, 1))
	return srv.ListenAndServe()
}

// parseVersionKey reads platform:number or platform:game.version. Bedrock
// game versions are resolved to chunk versions through table.
func parseVersionKey(table *versions.Table, s string) (translate.VersionKey, error) {
	platform, version, ok := strings.Cut(s, ":")
	if !ok || platform == "" || version == "" {
		return translate.VersionKey{}, errors.Errorf("version %q is not platform:version", s)
	}
	key := translate.VersionKey{Platform: platform}
	if !strings.Contains(version, ".") {
		n, err := strconv.Atoi(version)
		if err != nil || n < 0 {
			return key, errors.Errorf("bad version number %q", version)
		}
		key.Number = n
		return key, nil
	}
	game, err := versions.ParseGameVersion(version)
	if err != nil {
		return key, err
	}
	key.Game = game
	if platform == "bedrock" {
		n, ok := table.GameToChunkVersion(game)
		if !ok {
			return key, errors.Errorf("no chunk version for bedrock %s", game)
		}
		key.Number = n
	}
	return key, nil
}

// loadVersionTable reads a persisted chunk version table, or returns the
// built-in leveldb table when path is empty.
func loadVersionTable(path string) (*versions.Table, error) {
	if path == "" {
		return versions.LevelDB, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening version table")
	}
	defer f.Close()
	t, err := versions.LoadTable(f)
	return t, errors.Wrapf(err, "loading %s", path)
}

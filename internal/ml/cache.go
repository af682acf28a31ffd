package ml

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/metrics"
	"lungrisk/pkg/logger"
)

// Registry is the fixed, ordered set of servable model names.
var Registry = []string{"random_forest", "svm", "knn", "decision_tree"}

// CacheConfig configures a Cache.
type CacheConfig struct {
	Dir   string
	Names []string
	ONNX  ONNXOptions

	// Features is the input width every artifact must accept.
	// Zero means the questionnaire width.
	Features int
}

// Cache lazily loads model artifacts from a directory. The first access scans
// every registered name; missing or corrupt artifacts are skipped. Once at
// least one model is loaded the cache never scans again. An empty cache keeps
// scanning on access so artifacts dropped in after start-up are picked up.
type Cache struct {
	cfg     CacheConfig
	log     *logger.Logger
	mu      sync.RWMutex
	handles map[string]*Handle
}

// NewCache creates an empty cache. Nothing is read until Load, Get or Available.
func NewCache(cfg CacheConfig) *Cache {
	if len(cfg.Names) == 0 {
		cfg.Names = Registry
	}
	if cfg.Features <= 0 {
		cfg.Features = prediction.FeatureCount
	}
	return &Cache{
		cfg:     cfg,
		log:     logger.Get().With("component", "model_cache"),
		handles: make(map[string]*Handle),
	}
}

// NewStaticCache builds a cache over already loaded handles. It never scans.
func NewStaticCache(handles ...*Handle) *Cache {
	c := &Cache{
		log:     logger.Get().With("component", "model_cache"),
		handles: make(map[string]*Handle, len(handles)),
	}
	for _, h := range handles {
		c.cfg.Names = append(c.cfg.Names, h.Name())
		c.handles[h.Name()] = h
	}
	return c
}

// Load warms the cache and returns the number of loaded models.
func (c *Cache) Load() int {
	c.ensureLoaded()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// Get returns the handle for name.
func (c *Cache) Get(name string) (*Handle, bool) {
	c.ensureLoaded()
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handles[name]
	return h, ok
}

// Available lists loaded model names in registry order.
func (c *Cache) Available() []string {
	c.ensureLoaded()
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.handles))
	for _, name := range c.cfg.Names {
		if _, ok := c.handles[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Close releases native resources of every loaded handle.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.handles {
		h.Close()
	}
}

func (c *Cache) ensureLoaded() {
	c.mu.RLock()
	populated := len(c.handles) > 0
	c.mu.RUnlock()
	if populated || c.cfg.Dir == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.handles) > 0 {
		return
	}

	for _, name := range c.cfg.Names {
		h, err := c.loadOne(name)
		switch {
		case err == nil:
			c.handles[name] = h
			metrics.RecordModelLoad(name, "loaded")
			c.log.Infow("Model loaded", "model", name, "kind", h.Kind().String(), "format", h.Format(), "scaled", h.Scaled())
		case errors.Is(err, fs.ErrNotExist):
			metrics.RecordModelLoad(name, "missing")
			c.log.Warnw("Model artifact not found", "model", name, "dir", c.cfg.Dir)
		default:
			metrics.RecordModelLoad(name, "error")
			c.log.Warnw("Failed to load model", "model", name, "error", err)
		}
	}
	metrics.ModelsAvailable.Set(float64(len(c.handles)))
}

// loadOne looks for <name>_model.onnx, then <name>_model.json, with an
// optional <name>_scaler.json next to it.
func (c *Cache) loadOne(name string) (*Handle, error) {
	base := filepath.Join(c.cfg.Dir, name)

	scaler, err := LoadScaler(base+"_scaler.json", c.cfg.Features)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		scaler = nil
	}

	onnxPath := base + "_model.onnx"
	if _, err := os.Stat(onnxPath); err == nil {
		return LoadONNXHandle(name, onnxPath, c.cfg.ONNX, c.cfg.Features, scaler)
	}
	return LoadJSONModel(name, base+"_model.json", c.cfg.Features, scaler)
}

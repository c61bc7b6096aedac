// Package cache implementa el cache de consultas del servidor: presets de frescura,
// construcción de claves por empresa, deduplicación de consultas concurrentes
// e invalidación por subcadena.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Preset define cuánto tiempo un valor se considera fresco (Stale) y cuánto
// se conserva como respaldo antes de descartarse (GC).
type Preset struct {
	Name  string
	Stale time.Duration
	GC    time.Duration
}

// Presets disponibles.
var (
	Static   = Preset{Name: "static", Stale: 30 * time.Minute, GC: 2 * time.Hour}
	Standard = Preset{Name: "standard", Stale: 5 * time.Minute, GC: 30 * time.Minute}
	Dynamic  = Preset{Name: "dynamic", Stale: 30 * time.Second, GC: 5 * time.Minute}
	Realtime = Preset{Name: "realtime", Stale: 0, GC: time.Minute}
)

const keyPrefix = "erp"

// BuildKey arma la clave "erp:<company>:<resource>[:p...]". Los parámetros vacíos se omiten.
func BuildKey(companyID, resource string, params ...string) string {
	parts := []string{keyPrefix, companyID, resource}
	for _, p := range params {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

// Backend almacenamiento de las entradas serializadas.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteMatching borra las claves que contienen substr y devuelve cuántas eran.
	DeleteMatching(ctx context.Context, substr string) (int, error)
}

type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// Cache cache de consultas sobre un Backend.
type Cache struct {
	backend Backend
	group   singleflight.Group
	log     zerolog.Logger
	now     func() time.Time
}

// New construye el cache sobre backend.
func New(backend Backend, log zerolog.Logger) *Cache {
	return &Cache{backend: backend, log: log, now: time.Now}
}

// Remember devuelve en dest el valor de key. Si la entrada está fresca según preset
// se usa tal cual; si está vencida o no existe se ejecuta fetch (una sola vez por clave
// entre llamadas concurrentes). Si fetch falla y existe una entrada vencida, se sirve esa.
func (c *Cache) Remember(ctx context.Context, key string, preset Preset, dest any, fetch func(ctx context.Context) (any, error)) error {
	cached, found := c.load(ctx, key)
	if found && c.now().Sub(cached.StoredAt) < preset.Stale {
		return json.Unmarshal(cached.Data, dest)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// El resultado se comparte: la cancelación de quien llegó primero no debe abortarlo.
		ctx := context.WithoutCancel(ctx)
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("cache: serializar %s: %w", key, err)
		}
		raw, err := json.Marshal(entry{StoredAt: c.now(), Data: data})
		if err != nil {
			return nil, err
		}
		if err := c.backend.Set(ctx, key, raw, preset.GC); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache: no se pudo guardar la entrada")
		}
		return data, nil
	})
	if err != nil {
		if found {
			c.log.Warn().Err(err).Str("key", key).Msg("cache: consulta falló, se sirve valor vencido")
			return json.Unmarshal(cached.Data, dest)
		}
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

func (c *Cache) load(ctx context.Context, key string) (entry, bool) {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache: lectura falló")
		return entry{}, false
	}
	if !ok {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

// Invalidate elimina una clave exacta.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, key)
}

// InvalidateMatching elimina todas las claves que contienen substr.
func (c *Cache) InvalidateMatching(ctx context.Context, substr string) (int, error) {
	if substr == "" {
		return 0, fmt.Errorf("cache: patrón de invalidación vacío")
	}
	return c.backend.DeleteMatching(ctx, substr)
}

// InvalidateCompany elimina todas las claves de resource para la empresa.
func (c *Cache) InvalidateCompany(ctx context.Context, companyID, resource string) {
	if _, err := c.InvalidateMatching(ctx, BuildKey(companyID, resource)); err != nil {
		c.log.Warn().Err(err).Str("company_id", companyID).Str("resource", resource).Msg("cache: invalidación falló")
	}
}

package translate

import (
	"context"

	"doc-translator/internal/glossary"
	"doc-translator/internal/logger"
	"doc-translator/internal/protect"
	"doc-translator/internal/types"
)

// ClientOptions configures a translation Client.
type ClientOptions struct {
	SourceLang string
	TargetLang string
	// Glossary terms are always rendered into the instructions; Enforce
	// additionally rewrites the restored output as a hard cleanup pass.
	Glossary        *glossary.Glossary
	EnforceGlossary bool
	// ExtraInstructions is free-form text appended to the instructions.
	ExtraInstructions string
	// MaxAttempts bounds the retry loop per batch. Zero means the default.
	MaxAttempts int
	// Cache, when set, short-circuits items translated in earlier runs.
	Cache *Cache
}

// Client translates batches of items through a Backend. The per-item flow:
// protect tokens, send one structured request for the whole batch, parse the
// id-keyed response, restore each item with its own token map, then
// optionally hard-enforce the glossary.
type Client struct {
	backend Backend
	codec   *protect.Codec
	opts    ClientOptions
}

// NewClient creates a translation client on top of backend.
func NewClient(backend Backend, opts ClientOptions) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Client{
		backend: backend,
		codec:   protect.NewCodec(),
		opts:    opts,
	}
}

// Backend returns the backend this client talks to.
func (c *Client) Backend() Backend {
	return c.backend
}

// Cache returns the translation cache, nil when caching is off.
func (c *Client) Cache() *Cache {
	return c.opts.Cache
}

// TranslateBatch translates one batch and returns id -> translated text.
// Ids absent from the result (the backend skipped them or returned an empty
// translation) are logged and left out, so callers write back the original
// text for those units. A non-retryable or retry-exhausted backend failure
// fails the whole batch; partial batch output is never trusted.
func (c *Client) TranslateBatch(ctx context.Context, items []types.TranslationItem) (map[string]string, error) {
	out := make(map[string]string, len(items))
	if len(items) == 0 {
		return out, nil
	}

	// Serve what the cache already knows.
	remaining := items
	if c.opts.Cache != nil {
		remaining = remaining[:0:0]
		for _, it := range items {
			if translated, ok := c.opts.Cache.Get(it.Text); ok {
				out[it.ID] = translated
				continue
			}
			remaining = append(remaining, it)
		}
		if hits := len(items) - len(remaining); hits > 0 {
			logger.Debug("translation cache hits",
				logger.Int("hits", hits),
				logger.Int("remaining", len(remaining)))
		}
		if len(remaining) == 0 {
			return out, nil
		}
	}

	// Shield non-translatable spans; each item keeps its own restore map.
	restoreMaps := make(map[string]map[string]string, len(remaining))
	protected := make([]types.TranslationItem, 0, len(remaining))
	for _, it := range remaining {
		text, rm := c.codec.Protect(it.Text)
		restoreMaps[it.ID] = rm
		protected = append(protected, types.TranslationItem{ID: it.ID, Text: text})
	}

	system := buildSystemPrompt(c.opts.SourceLang, c.opts.TargetLang, c.opts.Glossary, c.opts.ExtraInstructions)
	user, err := buildUserPayload(c.opts.SourceLang, c.opts.TargetLang, protected)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot encode translation request", err)
	}

	// One request for the whole batch; parse failures count as attempts so
	// a garbled response gets another try.
	var results map[string]string
	err = withRetry(ctx, c.backend.Name(), c.opts.MaxAttempts, func() error {
		raw, cerr := c.backend.Complete(ctx, system, user)
		if cerr != nil {
			return cerr
		}
		parsed, perr := parseBatchResponse(raw)
		if perr != nil {
			return perr
		}
		results = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(remaining))
	for _, it := range remaining {
		requested[it.ID] = true
	}
	for id := range results {
		if !requested[id] {
			logger.Warn("backend returned unknown item id", logger.String("id", id))
		}
	}

	for _, it := range remaining {
		translated, ok := results[it.ID]
		if !ok {
			logger.Warn("translation missing for item, keeping original",
				logger.String("id", it.ID))
			continue
		}

		if missing := protect.MissingPlaceholders(translated, restoreMaps[it.ID]); len(missing) > 0 {
			logger.Warn("backend dropped placeholders",
				logger.String("id", it.ID),
				logger.Any("placeholders", missing))
		}
		restored := c.codec.Restore(translated, restoreMaps[it.ID])
		if c.opts.EnforceGlossary {
			restored = c.opts.Glossary.Enforce(restored)
		}

		out[it.ID] = restored
		if c.opts.Cache != nil {
			c.opts.Cache.Set(it.Text, restored)
		}
	}

	logger.Debug("batch translated",
		logger.String("backend", c.backend.Name()),
		logger.Int("items", len(items)),
		logger.Int("translated", len(out)))

	return out, nil
}

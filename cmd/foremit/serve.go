package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/kbukum/foremit/emitter"
	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/logger"
	"github.com/kbukum/foremit/observability"
	"github.com/kbukum/foremit/redis"
	"github.com/kbukum/foremit/sequence"
	"github.com/kbukum/foremit/server"
	"github.com/kbukum/foremit/source"
	"github.com/kbukum/foremit/sse"
	"github.com/kbukum/foremit/version"
)

func (c *cli) serveCommand(fs *pflag.FlagSet) command {
	addr := fs.String("addr", "", "listen address (overrides config)")
	useRedis := fs.Bool("redis", false, "fan out through the configured redis channel")

	return func(ctx context.Context, cfg *AppConfig, log *logger.Logger) error {
		if *addr != "" {
			cfg.Server.Addr = *addr
		}

		var client *redis.Client
		if *useRedis || cfg.Redis.Enabled {
			cfg.Redis.Enabled = true
			var err error
			if client, err = redis.New(cfg.Redis, log); err != nil {
				return err
			}
			defer client.Close()
		}

		hub := newStreamHub(cfg, log, client)
		srv := server.New(cfg.Server, log)
		hub.routes(srv.Engine())

		if err := srv.Start(ctx); err != nil {
			return err
		}
		if c.ready != nil {
			c.ready <- srv.Addr()
		}

		<-ctx.Done()
		hub.endAll()
		return srv.Stop(context.Background())
	}
}

// streamHub serves the HTTP surface of the serve command. Items posted to
// /emit go to a shared emitter, or to a redis channel when one is configured,
// and every /stream client wraps its own sequence around that source.
type streamHub struct {
	cfg    *AppConfig
	log    *logger.Logger
	em     *emitter.Emitter
	client *redis.Client
}

func newStreamHub(cfg *AppConfig, log *logger.Logger, client *redis.Client) *streamHub {
	return &streamHub{
		cfg:    cfg,
		log:    log.WithComponent("hub"),
		em:     emitter.New(),
		client: client,
	}
}

func (h *streamHub) routes(r gin.IRouter) {
	r.POST("/emit", h.emit)
	r.POST("/end", h.end)
	r.GET("/stream", sse.Handler(h.open, sse.WithLogger(h.log)))
	r.GET("/healthz", h.health)
}

func (h *streamHub) emit(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.client != nil {
		n, err := h.client.Publish(c.Request.Context(), h.client.Channel(), body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"receivers": n})
		return
	}
	delivered := h.em.Emit(h.cfg.Sequence.Event, string(body))
	c.JSON(http.StatusAccepted, gin.H{"delivered": delivered})
}

func (h *streamHub) end(c *gin.Context) {
	if h.client != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "redis streams end when clients disconnect"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"delivered": h.endAll()})
}

// endAll completes every open stream on the shared emitter.
func (h *streamHub) endAll() bool {
	return h.em.Emit(h.cfg.Sequence.End[0], nil)
}

// open wraps a sequence for one client. The limit query parameter overrides
// the configured limit.
func (h *streamHub) open(c *gin.Context) (*sequence.Sequence[string], error) {
	opts := []sequence.Option{sequence.WithConfig(h.cfg.Sequence), sequence.WithLogger(h.log)}
	opts = append(opts, telemetryOptions(h.cfg)...)
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.InvalidOption("limit", "limit must be an integer")
		}
		opts = append(opts, sequence.WithLimit(limit))
	}

	if h.client == nil {
		return sequence.Wrap[string](h.em, opts...)
	}

	ctx := c.Request.Context()
	ps, err := h.client.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	src := source.Redis(ctx, ps)
	opts = append(opts, sequence.WithEvent(source.EventMessage), sequence.WithTransform(messagePayload))
	seq, err := sequence.Wrap[string](src, opts...)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return seq, nil
}

func (h *streamHub) health(c *gin.Context) {
	var checkers []observability.HealthChecker
	if h.client != nil {
		checkers = append(checkers, h.client)
	}
	sh := observability.CheckAll(c.Request.Context(), h.cfg.Name, version.GetVersionInfo().Short(), checkers...)
	c.JSON(sh.HTTPStatus(), sh)
}

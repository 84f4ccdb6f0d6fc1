// Command idem-serverless serves the request pipeline over plain HTTP
// through a chi router, standing in for the serverless event adapter
// spec.md places out of scope (SPEC_FULL §9) so the core can be exercised
// end-to-end without a real Lambda runtime.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/idemio/idem-serverless/config"
	"github.com/idemio/idem-serverless/openapi"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/cors"
	"github.com/idemio/idem-serverless/serverless/handlers/header"
	"github.com/idemio/idem-serverless/serverless/handlers/health"
	"github.com/idemio/idem-serverless/serverless/handlers/jwt"
	"github.com/idemio/idem-serverless/serverless/handlers/proxy"
	"github.com/idemio/idem-serverless/serverless/handlers/sanitizer"
	"github.com/idemio/idem-serverless/serverless/handlers/trace"
	"github.com/idemio/idem-serverless/serverless/handlers/validatormw"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	configDir := flag.String("config-dir", "./config", "directory holding per-handler configuration files")
	flowConfigPath := flag.String("flow-config", "./config/flow.json", "path to the execution flow configuration document")
	openapiSpecPath := flag.String("openapi-spec", "", "path to an OpenAPI document to back the jwt and validatormw handlers (optional)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	var spec *openapi.Spec
	if *openapiSpecPath != "" {
		var err error
		spec, err = openapi.FromFile(*openapiSpecPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *openapiSpecPath).Msg("failed to load OpenAPI specification")
		}
		log.Info().Str("path", *openapiSpecPath).Msg("loaded OpenAPI specification")
	}

	flowCfg, err := config.LoadExecutionFlowConfig(*flowConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *flowConfigPath).Msg("failed to load execution flow configuration")
	}

	factories := serverless.NewFactoryRegistry()
	factories.Register("trace", func(dir string) (serverless.Handler, error) {
		cfg, err := trace.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return trace.New(cfg), nil
	})
	factories.Register("header", func(dir string) (serverless.Handler, error) {
		cfg, err := header.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return header.New(cfg), nil
	})
	factories.Register("cors", func(dir string) (serverless.Handler, error) {
		cfg, err := cors.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return cors.New(cfg), nil
	})
	factories.Register("jwt", func(dir string) (serverless.Handler, error) {
		cfg, err := jwt.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return jwt.New(cfg, spec), nil
	})
	factories.Register("proxy", func(dir string) (serverless.Handler, error) {
		cfg, err := proxy.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return proxy.New(cfg, nil), nil
	})
	factories.Register("health", func(dir string) (serverless.Handler, error) {
		cfg, err := health.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return health.New(cfg, nil), nil
	})
	factories.Register("sanitizer", func(dir string) (serverless.Handler, error) {
		cfg, err := sanitizer.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return sanitizer.New(cfg, nil), nil
	})
	factories.Register("validatormw", func(dir string) (serverless.Handler, error) {
		cfg, err := validatormw.LoadConfig(dir)
		if err != nil {
			return nil, err
		}
		return validatormw.New(cfg, spec), nil
	})

	// Handlers named here run in the response phase, after the terminator,
	// wherever they appear before it in a route's exec list
	// (serverless.NewPipeline's responseHandlerNames); the last exec entry
	// is always the terminator.
	responseHandlers := map[string]bool{"trace": true, "header": true, "cors": true, "validatormw": true}

	pipeline, err := serverless.NewPipeline(flowCfg, factories, *configDir, responseHandlers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	router := chi.NewRouter()
	router.Handle("/*", pipelineHandler(pipeline, log))

	chain := middlewares{recoverMiddleware(log)}

	server := &http.Server{
		Addr:         *addr,
		Handler:      chain.apply(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", *addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// pipelineHandler adapts an http.Request/ResponseWriter pair to a
// serverless.Request/Response round trip through pipeline, playing the
// role of the platform event adapter spec.md places out of scope.
func pipelineHandler(pipeline *serverless.Pipeline, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) == 0 {
			body = nil
		}

		headers := make(map[string]string, len(r.Header))
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}
		query := make(map[string]string, len(r.URL.Query()))
		for name, values := range r.URL.Query() {
			if len(values) > 0 {
				query[name] = values[0]
			}
		}

		req := serverless.Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: headers,
			Query:   query,
			Body:    body,
		}

		resp, err := pipeline.Handle(r.Context(), serverless.RequestContext{RequestID: requestID}, req)
		if err != nil {
			log.Error().Err(err).Str("request_id", requestID).Str("path", req.Path).Msg("pipeline execution failed")
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		for name, value := range resp.Headers {
			w.Header().Set(name, value)
		}
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Body)

		log.Info().
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", resp.Status).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

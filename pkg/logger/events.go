package logger

import (
	"context"
	"log/slog"
	"time"
)

// outcome logs one event at ok or failed level depending on err. Every
// helper below is a thin wrapper so the "type" attribute stays consistent.
type outcome struct {
	kind      string
	okLevel   slog.Level
	failLevel slog.Level
	okMsg     string
	failMsg   string
}

func (o outcome) log(ctx context.Context, err error, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs = append([]slog.Attr{slog.String("type", o.kind)}, attrs...)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, o.failLevel, o.failMsg, attrs...)
		return
	}
	slog.LogAttrs(ctx, o.okLevel, o.okMsg, attrs...)
}

var (
	grpcRequest      = outcome{"grpc_request", slog.LevelInfo, slog.LevelError, "gRPC Request", "gRPC Request Failed"}
	dbConnection     = outcome{"database_connection", slog.LevelInfo, slog.LevelError, "Database Connection", "Database Connection Failed"}
	flowOperation    = outcome{"flow_operation", slog.LevelInfo, slog.LevelError, "Flow Operation", "Flow Operation Failed"}
	notification     = outcome{"notification", slog.LevelInfo, slog.LevelWarn, "Notification Sent", "Notification Failed"}
	eventPublish     = outcome{"event_publish", slog.LevelDebug, slog.LevelWarn, "Event Published", "Event Publish Failed"}
	aiRequest        = outcome{"ai_request", slog.LevelInfo, slog.LevelWarn, "AI Request", "AI Request Failed"}
	shardConnection  = outcome{"redis_shard_connection", slog.LevelInfo, slog.LevelError, "Redis Shard Connected", "Redis Shard Connection Failed"}
	cacheOperation   = outcome{"cache_operation", slog.LevelDebug, slog.LevelError, "Cache Operation Success", "Cache Operation Failed"}
	cacheInvalidated = outcome{"cache_invalidation", slog.LevelDebug, slog.LevelWarn, "Cache Invalidated", "Cache Invalidation Failed"}
)

// slowQueryThreshold promotes successful queries from debug to warn.
const slowQueryThreshold = time.Second

func LogHTTPRequest(ctx context.Context, method, path, userAgent, requestID string, duration time.Duration, statusCode int) {
	if ctx == nil {
		ctx = context.Background()
	}

	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	slog.LogAttrs(ctx, level, "HTTP Request",
		slog.String("type", "http_request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("status_code", statusCode),
	)
}

func LogGRPCRequest(ctx context.Context, method, requestID string, duration time.Duration, err error) {
	grpcRequest.log(ctx, err,
		slog.String("method", method),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
	)
}

func LogDatabaseQuery(ctx context.Context, query string, args []any, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_query"),
		slog.String("query", query),
		slog.Int("arg_count", len(args)),
		slog.Duration("duration", duration),
	}

	switch {
	case err != nil:
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Query Failed", attrs...)
	case duration > slowQueryThreshold:
		slog.LogAttrs(ctx, slog.LevelWarn, "Slow Database Query", attrs...)
	default:
		slog.LogAttrs(ctx, slog.LevelDebug, "Database Query", attrs...)
	}
}

func LogDatabaseConnection(ctx context.Context, dsn string, operation string, err error) {
	dbConnection.log(ctx, err,
		slog.String("dsn", MaskPassword(dsn)),
		slog.String("operation", operation),
	)
}

func LogRedisCacheHit(ctx context.Context, key string, hit bool, duration time.Duration) {
	msg := "Cache Miss"
	if hit {
		msg = "Cache Hit"
	}
	slog.LogAttrs(ctx, slog.LevelDebug, msg,
		slog.String("type", "cache_event"),
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
		slog.Duration("duration", duration),
	)
}

// LogError always logs at error level and tags the line with the request id
// carried by ctx, if any.
func LogError(ctx context.Context, err error, operation string, additionalFields ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("type", "error"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	attrs = append(attrs, additionalFields...)

	slog.LogAttrs(ctx, slog.LevelError, "Operation Error", attrs...)
}

// LogFlowOperation records a mutation or read of a flow. taskID may be empty.
func LogFlowOperation(ctx context.Context, operation, flowID, taskID string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("flow_id", flowID),
		slog.Duration("duration", duration),
	}
	if taskID != "" {
		attrs = append(attrs, slog.String("task_id", taskID))
	}
	flowOperation.log(ctx, err, attrs...)
}

func LogNotification(ctx context.Context, taskID, title, edge string, at time.Time, err error) {
	notification.log(ctx, err,
		slog.String("task_id", taskID),
		slog.String("title", title),
		slog.String("edge", edge),
		slog.Time("at", at),
	)
}

func LogEventPublish(ctx context.Context, topic, eventType, key string, duration time.Duration, err error) {
	eventPublish.log(ctx, err,
		slog.String("topic", topic),
		slog.String("event_type", eventType),
		slog.String("key", key),
		slog.Duration("duration", duration),
	)
}

func LogAIRequest(ctx context.Context, model, operation string, duration time.Duration, err error) {
	aiRequest.log(ctx, err,
		slog.String("model", model),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
	)
}

func LogSlowOperation(ctx context.Context, operation string, duration time.Duration, threshold time.Duration) {
	if duration <= threshold {
		return
	}
	slog.LogAttrs(ctx, slog.LevelWarn, "Slow Operation Detected",
		slog.String("type", "slow_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
	)
}

func LogServiceStart(serviceName string, config map[string]any) {
	logLifecycle("start", "Service Starting", serviceName, slog.Any("config", config))
}

func LogServiceStop(serviceName string, reason string) {
	logLifecycle("stop", "Service Stopping", serviceName, slog.String("reason", reason))
}

func logLifecycle(event, msg, serviceName string, extra slog.Attr) {
	slog.LogAttrs(context.Background(), slog.LevelInfo, msg,
		slog.String("type", "service_lifecycle"),
		slog.String("event", event),
		slog.String("service", serviceName),
		extra,
	)
}

func LogRedisShardConnection(ctx context.Context, shardIndex int, addr string, err error) {
	shardConnection.log(ctx, err,
		slog.Int("shard_index", shardIndex),
		slog.String("address", addr),
	)
}

func LogRedisShardSelection(ctx context.Context, key string, shardIndex int, operation string) {
	slog.LogAttrs(ctx, slog.LevelDebug, "Redis Shard Selected",
		slog.String("type", "redis_shard_selection"),
		slog.String("key", key),
		slog.Int("shard_index", shardIndex),
		slog.String("operation", operation),
	)
}

func LogCacheOperation(ctx context.Context, operation, key string, shardIndex int, duration time.Duration, err error) {
	cacheOperation.log(ctx, err,
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Int("shard_index", shardIndex),
		slog.Duration("duration", duration),
	)
}

func LogCacheInvalidation(ctx context.Context, key string, reason string, err error) {
	cacheInvalidated.log(ctx, err,
		slog.String("key", key),
		slog.String("reason", reason),
	)
}

func LogCacheStatus(ctx context.Context, enabled bool, shardCount int) {
	msg := "Cache Disabled"
	if enabled {
		msg = "Cache Initialized"
	}
	slog.LogAttrs(ctx, slog.LevelInfo, msg,
		slog.String("type", "cache_status"),
		slog.Bool("enabled", enabled),
		slog.Int("shard_count", shardCount),
	)
}

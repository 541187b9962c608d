package logger

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type queryStartKey struct{}

type queryStart struct {
	sql  string
	args []any
	at   time.Time
}

// QueryTracer logs every statement run through a pgx connection together with its
// arguments and duration. Failed statements are logged at error level; the error
// itself is passed back to the caller untouched.
type QueryTracer struct {
	log *zap.Logger
}

func NewQueryTracer(log *zap.Logger) *QueryTracer {
	return &QueryTracer{log: log.Named("database")}
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, args: data.Args, at: time.Now()})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	fields := []zap.Field{
		zap.String("query", compactSQL(start.sql)),
		zap.Any("params", RedactArgs(start.sql, start.args)),
		zap.Duration("duration", time.Since(start.at)),
	}
	if data.Err != nil {
		t.log.Error("query failed", append(fields, zap.Error(data.Err))...)
		return
	}
	t.log.Debug("query", fields...)
}

// RedactArgs hides bcrypt hashes anywhere and every argument bound to the session table.
func RedactArgs(sql string, args []any) []any {
	sessionQuery := strings.Contains(strings.ToLower(sql), " auth")
	out := make([]any, len(args))
	for i, a := range args {
		s, isString := a.(string)
		switch {
		case isString && (sessionQuery || strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$")):
			out[i] = "*****"
		default:
			out[i] = a
		}
	}
	return out
}

func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

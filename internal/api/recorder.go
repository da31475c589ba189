package api

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/courtfetch/internal/cases"
	"github.com/JaimeStill/courtfetch/internal/querylog"
)

type historyRecorder struct {
	store  *querylog.Store
	logger *slog.Logger
}

func newHistoryRecorder(store *querylog.Store, logger *slog.Logger) cases.Recorder {
	return &historyRecorder{store: store, logger: logger.With("system", "recorder")}
}

func (r *historyRecorder) Record(ctx context.Context, q cases.Query, client cases.Client, res *cases.Result) {
	if _, err := r.store.Append(ctx, appendCommand(q, client, res)); err != nil {
		r.logger.Warn("query log entry kept in memory only", "error", err)
	}
}

func appendCommand(q cases.Query, client cases.Client, res *cases.Result) querylog.AppendCommand {
	cmd := querylog.AppendCommand{
		CaseType:   q.CaseType,
		CaseNumber: q.CaseNumber,
		FilingYear: q.FilingYear,
		Court:      q.Court,
		Success:    res.Status == cases.StatusOK,
		UserAgent:  client.UserAgent,
		ClientAddr: client.Addr,
	}

	if !cmd.Success {
		cmd.Error = res.Reason
		return cmd
	}

	if res.Data != nil && res.Data.Snapshot != nil {
		cmd.Snapshot = &querylog.Snapshot{
			SourceURL:   res.Data.Snapshot.SourceURL,
			RetrievedAt: res.Data.Snapshot.RetrievedAt,
			Method:      res.Data.Snapshot.Method,
		}
	}
	return cmd
}

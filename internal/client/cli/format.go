package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
)

func formatSeverity(s *int) string {
	if s == nil {
		return ""
	}
	return strconv.Itoa(*s)
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " / ")
}

func printLogs(w io.Writer, logs []*models.HealthLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No entries")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tSEV\tTITLE")
	for _, h := range logs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", h.LocalID, h.Date, h.Category, formatSeverity(h.Severity), h.Title)
	}
	_ = tw.Flush()
}

func printLog(w io.Writer, h *models.HealthLog) {
	fmt.Fprintf(w, "#%d %s\n", h.LocalID, h.Title)
	fmt.Fprintf(w, "Date:        %s\n", h.Date)
	fmt.Fprintf(w, "Category:    %s\n", h.Category)
	if h.Severity != nil {
		fmt.Fprintf(w, "Severity:    %d\n", *h.Severity)
	}
	if h.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", h.Description)
	}
	if len(h.Tags) > 0 {
		fmt.Fprintf(w, "Tags:        %s\n", strings.Join(h.Tags, ", "))
	}
	if h.Notes != "" {
		fmt.Fprintf(w, "Notes:\n%s\n", h.Notes)
	}
	fmt.Fprintf(w, "Updated:     %s\n", h.UpdatedAt.Local().Format(time.DateTime))
}

func printSyncResult(w io.Writer, r *models.SyncResult) {
	fmt.Fprintf(w, "Synced %d, failed %d\n", r.SyncedCount, r.FailedCount)
	for _, e := range r.Errors {
		retry := ""
		if e.Retryable {
			retry = " (will retry)"
		}
		fmt.Fprintf(w, "  #%d: %s%s\n", e.LocalID, e.Error, retry)
	}
}

func printSyncStatus(w io.Writer, s *models.SyncStatus) {
	online := "offline"
	if s.IsOnline {
		online = "online"
	}
	last := "never"
	if s.LastSyncAt != nil {
		last = s.LastSyncAt.Local().Format(time.DateTime)
	}
	fmt.Fprintf(w, "Server:    %s\n", online)
	fmt.Fprintf(w, "Syncing:   %t\n", s.IsSyncing)
	fmt.Fprintf(w, "Pending:   %d\n", s.PendingCount)
	fmt.Fprintf(w, "Last sync: %s\n", last)
}

func printSyncStats(w io.Writer, s *models.SyncStats) {
	fmt.Fprintf(w, "%d of %d entries synced (%d%%), %d pending\n",
		s.SyncedLogs, s.TotalLogs, s.SyncPercentage, s.UnsyncedLogs)
}

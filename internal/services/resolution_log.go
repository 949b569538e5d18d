package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

const defaultUnresolvedLimit = 100

// ReportCollector gathers the reports of one matcher run
type ReportCollector struct {
	mu      sync.Mutex
	reports []ResolutionReport
}

// Report satisfies Reporter
func (c *ReportCollector) Report(r ResolutionReport) {
	c.mu.Lock()
	c.reports = append(c.reports, r)
	c.mu.Unlock()
}

// Tee returns a Reporter that records into c and forwards to next
func (c *ReportCollector) Tee(next Reporter) Reporter {
	return func(r ResolutionReport) {
		c.Report(r)
		if next != nil {
			next(r)
		}
	}
}

// Reports returns a copy of everything collected so far
func (c *ReportCollector) Reports() []ResolutionReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ResolutionReport, len(c.reports))
	copy(out, c.reports)
	return out
}

// ResolutionLog stores unresolved mentions so curators can extend the
// override tables later
type ResolutionLog struct {
	db *gorm.DB
}

func NewResolutionLog(db *gorm.DB) *ResolutionLog {
	return &ResolutionLog{db: db}
}

// Record persists the reports of one run. Nothing is written for an empty batch.
func (l *ResolutionLog) Record(ctx context.Context, runID, eventID string, reports []ResolutionReport) error {
	return recordReports(l.db.WithContext(ctx), runID, eventID, reports)
}

func recordReports(tx *gorm.DB, runID, eventID string, reports []ResolutionReport) error {
	if len(reports) == 0 {
		return nil
	}
	rows := make([]models.UnresolvedMention, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, models.UnresolvedMention{
			RunID:     runID,
			EventID:   eventID,
			Line:      r.Line,
			Kind:      string(r.Kind),
			Severity:  string(r.Severity),
			Detail:    r.Detail,
			CreatedAt: time.Now(),
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to record unresolved mentions: %w", err)
	}
	return nil
}

// List returns stored mentions newest first, optionally filtered by report kind
func (l *ResolutionLog) List(ctx context.Context, kind string, limit int) ([]models.UnresolvedMention, error) {
	if limit <= 0 {
		limit = defaultUnresolvedLimit
	}
	query := l.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var rows []models.UnresolvedMention
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list unresolved mentions: %w", err)
	}
	return rows, nil
}

// Prune deletes mentions recorded before the cutoff
func (l *ResolutionLog) Prune(ctx context.Context, before time.Time) (int64, error) {
	result := l.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.UnresolvedMention{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune unresolved mentions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// StartPruner removes mentions older than retention every interval until ctx is done
func (l *ResolutionLog) StartPruner(ctx context.Context, retention, interval time.Duration) {
	log.Printf("Resolution log pruner started: retention=%s", retention)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Resolution log pruner stopping...")
			return
		case <-ticker.C:
			n, err := l.Prune(ctx, time.Now().Add(-retention))
			if err != nil {
				log.Printf("Warning: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Pruned %d unresolved mentions", n)
			}
		}
	}
}

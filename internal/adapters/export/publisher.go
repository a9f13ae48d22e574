package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rollbook/internal/infra/blob/core"
)

// PublishStatus reports the outcome of a publish attempt.
type PublishStatus string

const (
	PublishSucceeded PublishStatus = "succeeded"
	PublishFailed    PublishStatus = "failed"
)

// AuditLogger records publish audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for published artifacts.
type AuditEntry struct {
	ID         string        `json:"id"`
	Format     Format        `json:"format"`
	Key        string        `json:"key"`
	Status     PublishStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// PublisherOption customizes a Publisher.
type PublisherOption func(*Publisher)

// WithAuditLogger records every publish attempt with the supplied logger.
func WithAuditLogger(audit AuditLogger) PublisherOption {
	return func(p *Publisher) {
		if audit != nil {
			p.audit = audit
		}
	}
}

// Publisher renders a format and stores the result as an immutable artifact.
// Publishing is synchronous: the register is single-writer and exports are
// small, so there is no queue between render and store.
type Publisher struct {
	exporter *Exporter
	store    core.Store
	audit    AuditLogger
	nowFn    func() time.Time
}

// NewPublisher binds an exporter to an artifact store.
func NewPublisher(exporter *Exporter, store core.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		exporter: exporter,
		store:    store,
		audit:    noopAudit{},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ArtifactKey returns the filename convention for a format. dateKey is
// ignored for backups, which are stamped with the publish time instead.
func (p *Publisher) ArtifactKey(format Format, dateKey string) (string, error) {
	switch format {
	case FormatCSV:
		return fmt.Sprintf("attendance_%s.csv", dateKey), nil
	case FormatDoc:
		return fmt.Sprintf("attendance_%s.doc", dateKey), nil
	case FormatBackup:
		return fmt.Sprintf("rollbook_backup_%s.json", p.nowFn().Format("20060102T150405Z")), nil
	default:
		return "", fmt.Errorf("unsupported export format %s", format)
	}
}

// Publish renders the requested format and puts it into the artifact store
// under the conventional key.
func (p *Publisher) Publish(ctx context.Context, format Format, dateKey string) (core.Info, error) {
	key, err := p.ArtifactKey(format, dateKey)
	if err != nil {
		return core.Info{}, err
	}
	var payload []byte
	switch format {
	case FormatCSV:
		payload, err = p.exporter.CSV(dateKey)
	case FormatBackup:
		payload, err = p.exporter.Backup()
	case FormatDoc:
		payload = p.exporter.PrintableDoc(dateKey)
	}
	if err != nil {
		err = fmt.Errorf("render %s: %w", format, err)
		p.recordAudit(ctx, format, key, err)
		return core.Info{}, err
	}
	info, err := p.store.Put(ctx, key, bytes.NewReader(payload), core.PutOptions{
		ContentType: format.ContentType(),
		Metadata:    map[string]string{"format": string(format)},
	})
	if err != nil {
		err = fmt.Errorf("store artifact %s: %w", key, err)
		p.recordAudit(ctx, format, key, err)
		return core.Info{}, err
	}
	p.recordAudit(ctx, format, key, nil)
	return info, nil
}

func (p *Publisher) recordAudit(ctx context.Context, format Format, key string, err error) {
	entry := AuditEntry{
		ID:         uuid.NewString(),
		Format:     format,
		Key:        key,
		Status:     PublishSucceeded,
		OccurredAt: p.nowFn(),
	}
	if err != nil {
		entry.Status = PublishFailed
		entry.Reason = err.Error()
	}
	p.audit.Record(ctx, entry)
}

package core

import (
	"context"
	"sort"
	"time"
)

// BackupObject describes a stored backup.
type BackupObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// BackupStore is object storage for exported documents.
type BackupStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]BackupObject, error)
}

// BackupsEnabled reports whether object storage is configured.
func (s *Service) BackupsEnabled() bool {
	return s.backups != nil
}

// BackupKey is the object key of a backup made at t.
func BackupKey(prefix string, t time.Time) string {
	return prefix + "workout-complete-" + t.UTC().Format("2006-01-02-150405") + ".csv"
}

// Backup stores the current sectioned export in object storage.
// It holds the import lease so a running import is never captured halfway.
func (s *Service) Backup(ctx context.Context) (BackupObject, error) {
	if s.backups == nil {
		return BackupObject{}, E(KindValidation, "backup", "backup storage is not configured")
	}

	if err := s.acquire(ctx, "backup"); err != nil {
		return BackupObject{}, err
	}
	content, err := EncodeRepository(ctx, s.repo)
	s.lease.Release()
	if err != nil {
		return BackupObject{}, err
	}

	return s.storeBackup(ctx, content)
}

func (s *Service) storeBackup(ctx context.Context, content string) (BackupObject, error) {
	now := s.now()
	obj := BackupObject{
		Key:          BackupKey(s.backupPrefix, now),
		Size:         int64(len(content)),
		LastModified: now,
	}

	err := s.backups.Put(ctx, obj.Key, []byte(content), ContentTypeCSV)
	s.metrics.observeBackup("backup", err)
	if err != nil {
		return BackupObject{}, Wrap(KindInternal, "backup", err)
	}

	s.logger.Info("backup stored", "key", obj.Key, "bytes", obj.Size)
	s.audit.Record(ctx, AuditLogParams{Action: ActionBackup, Target: obj.Key})
	return obj, nil
}

// ListBackups returns the stored backups, newest first.
func (s *Service) ListBackups(ctx context.Context) ([]BackupObject, error) {
	if s.backups == nil {
		return nil, E(KindValidation, "list_backups", "backup storage is not configured")
	}
	objects, err := s.backups.List(ctx, s.backupPrefix)
	if err != nil {
		return nil, Wrap(KindInternal, "list_backups", err)
	}
	sort.Slice(objects, func(i, j int) bool {
		if !objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].LastModified.After(objects[j].LastModified)
		}
		return objects[i].Key > objects[j].Key
	})
	return objects, nil
}

// Restore imports a stored backup, replacing the program.
func (s *Service) Restore(ctx context.Context, key string) (ImportResult, error) {
	if s.backups == nil {
		return ImportResult{}, E(KindValidation, "restore", "backup storage is not configured")
	}
	if err := Required(key, "key"); err != nil {
		return ImportResult{}, AsError("restore", err)
	}

	body, err := s.backups.Get(ctx, key)
	if err != nil {
		s.metrics.observeBackup("restore", err)
		if KindOf(err) == KindNotFound {
			return ImportResult{}, err
		}
		return ImportResult{}, Wrap(KindInternal, "restore", err)
	}

	res, err := s.ImportDocument(ctx, string(body))
	s.metrics.observeBackup("restore", err)
	if err != nil {
		return res, err
	}
	s.audit.Record(ctx, AuditLogParams{
		Action:       ActionRestore,
		Target:       key,
		ImportID:     res.ImportID,
		RowsAffected: res.Counts.Total(),
	})
	return res, nil
}

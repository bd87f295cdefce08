package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"resultscrawler/internal/domain"
	"resultscrawler/internal/ports"
)

const (
	institutionsPath = "institutions"
	studentsPath     = "students"
	subjectsPath     = "subjects"
)

// Target writes parsed records into one hierarchical store and its blob
// bucket. A single Target instance lives for the whole run so the sticky
// upload-disabled flag spans entries.
type Target struct {
	name   string
	tree   ports.TreeStore
	blobs  ports.BlobStore
	logger *slog.Logger

	uploadsDisabled bool
}

var _ ports.SyncTarget = (*Target)(nil)

func NewTarget(name string, tree ports.TreeStore, blobs ports.BlobStore, logger *slog.Logger) *Target {
	return &Target{name: name, tree: tree, blobs: blobs, logger: logger}
}

func (t *Target) Name() string {
	return t.name
}

// SyncRecords writes one payload's records in a fixed order: institutions,
// then students, then results. A reader scanning the store therefore never
// sees a student referencing an institution that is not there yet.
func (t *Target) SyncRecords(ctx context.Context, records []domain.PersonRecord, provenance domain.Entry) error {
	if err := t.syncInstitutions(ctx, records); err != nil {
		return fmt.Errorf("sync institutions: %w", err)
	}
	if err := t.syncStudents(ctx, records); err != nil {
		return fmt.Errorf("sync students: %w", err)
	}
	if err := t.syncResults(ctx, records, provenance); err != nil {
		return fmt.Errorf("sync results: %w", err)
	}
	return nil
}

func (t *Target) syncInstitutions(ctx context.Context, records []domain.PersonRecord) error {
	institutions := map[string]any{}
	for _, r := range records {
		if r.Addressable() && r.InstitutionName != "" {
			institutions[r.InstitutionCode] = r.InstitutionName
		} else {
			t.warn("not processing institution, insufficient data", "roll_num", r.RollNum, "institution_code", r.InstitutionCode)
		}
	}
	if len(institutions) == 0 {
		return nil
	}

	t.debug("update institutions", "count", len(institutions))
	return t.tree.Update(ctx, institutionsPath, institutions)
}

func (t *Target) syncStudents(ctx context.Context, records []domain.PersonRecord) error {
	fields := map[string]any{}
	for _, r := range records {
		if !r.Addressable() {
			t.warn("not processing student, insufficient data", "roll_num", r.RollNum, "name", r.StudentName)
			continue
		}
		base := fmt.Sprintf("%s/%s/%s", r.InstitutionCode, r.Batch, r.RollNum)
		fields[base+"/name"] = r.StudentName
		fields[base+"/programme_code"] = r.ProgrammeCode
		fields[base+"/programme_name"] = r.ProgrammeName
		fields[base+"/batch"] = r.Batch
	}
	if len(fields) == 0 {
		return nil
	}

	t.debug("update students", "fields", len(fields))
	return t.tree.Update(ctx, studentsPath, fields)
}

func (t *Target) syncResults(ctx context.Context, records []domain.PersonRecord, provenance domain.Entry) error {
	for _, r := range records {
		if !r.Addressable() {
			t.warn("not processing results, insufficient data", "roll_num", r.RollNum)
			continue
		}
		base := fmt.Sprintf("%s/%s/%s/%s/results", studentsPath, r.InstitutionCode, r.Batch, r.RollNum)
		for _, res := range r.Results {
			// Keys are freshly generated per write, so replaying the same
			// payload duplicates result entries. Reprocessing is guarded by
			// the diff engine, not here.
			key, err := t.tree.Push(ctx, base, resultValue(res, provenance))
			if err != nil {
				return fmt.Errorf("push result for %s: %w", r.RollNum, err)
			}
			t.debug("pushed result", "roll_num", r.RollNum, "key", key)
		}
	}
	return nil
}

func resultValue(res domain.ResultRecord, provenance domain.Entry) map[string]any {
	return map[string]any{
		"examination_name": res.ExaminationName,
		"marks":            res.Marks,
		"semester":         res.Semester,
		"pdf_info":         provenance,
	}
}

// SyncSubjects replaces the shared subject map wholesale when non-empty.
func (t *Target) SyncSubjects(ctx context.Context, subjects domain.SubjectMap) error {
	if len(subjects) == 0 {
		return nil
	}
	t.debug("set subjects", "count", len(subjects))
	if err := t.tree.Set(ctx, subjectsPath, subjects); err != nil {
		return fmt.Errorf("set subjects: %w", err)
	}
	return nil
}

// UploadAssets uploads one photo per qualifying record. The first failed
// upload disables the stage for the remainder of the run: the external quota
// is assumed exhausted, and the operator can resume with an images-only pass.
// Store writes are never affected, so the error is absorbed here.
func (t *Target) UploadAssets(ctx context.Context, records []domain.PersonRecord) error {
	if t.uploadsDisabled || t.blobs == nil {
		return nil
	}

	for _, r := range records {
		if !r.Addressable() || len(r.Photo) == 0 {
			t.warn("not uploading student photo, insufficient data", "roll_num", r.RollNum)
			continue
		}

		path := fmt.Sprintf("photos/students/%s.jpeg", r.RollNum)
		t.debug("uploading student photo", "path", path)
		if err := t.blobs.Upload(ctx, path, "image/jpeg", r.Photo); err != nil {
			t.uploadsDisabled = true
			t.error("photo upload failed, likely quota reached, stopping uploads for this run",
				"target", t.name, "roll_num", r.RollNum, "err", err)
			t.info("to resume uploads only, rerun with the last-json cursor and skip-data set")
			return nil
		}
	}
	return nil
}

func (t *Target) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}

func (t *Target) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

func (t *Target) info(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Info(msg, args...)
	}
}

func (t *Target) error(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Error(msg, args...)
	}
}

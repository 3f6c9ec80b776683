package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

// ExamRepository manages exam records and their per-subject scores.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = "id, student_id, exam_name, exam_type, exam_date, total_score, total_full_score, class_rank, grade_rank, notes, created_at, updated_at"

const subjectScoreColumns = "id, exam_record_id, subject, score, full_score, created_at"

// ListByStudent returns a student's exam records newest first with
// subject scores attached.
func (r *ExamRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ExamRecord, error) {
	if r.db == nil {
		return nil, appErrors.ErrStoreNotConfigured
	}

	query := fmt.Sprintf(`SELECT %s FROM student_exam_records WHERE student_id = $1
        ORDER BY exam_date DESC, created_at DESC`, examColumns)

	var rows []models.ExamRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, storeErr("list exam records", err)
	}

	records := make([]models.ExamRecord, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Domain())
		ids = append(ids, row.ID)
	}

	scores, err := r.subjectScoresByExam(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if s, ok := scores[records[i].ID]; ok {
			records[i].SubjectScores = s
		}
	}
	return records, nil
}

// ListByStudents returns exam records for a set of students keyed by
// student ID, newest first, without subject scores.
func (r *ExamRepository) ListByStudents(ctx context.Context, studentIDs []string) (map[string][]models.ExamRecord, error) {
	if r.db == nil {
		return nil, appErrors.ErrStoreNotConfigured
	}
	if len(studentIDs) == 0 {
		return map[string][]models.ExamRecord{}, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM student_exam_records WHERE student_id IN (?)
        ORDER BY exam_date DESC, created_at DESC`, examColumns), studentIDs)
	if err != nil {
		return nil, fmt.Errorf("build exam records query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.ExamRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storeErr("list exam records by students", err)
	}

	byStudent := make(map[string][]models.ExamRecord, len(studentIDs))
	for _, row := range rows {
		rec := row.Domain()
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}
	return byStudent, nil
}

// FindByID fetches one exam record with subject scores. Callers map
// sql.ErrNoRows to their own not-found error.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.ExamRecord, error) {
	if r.db == nil {
		return nil, appErrors.ErrStoreNotConfigured
	}

	query := fmt.Sprintf("SELECT %s FROM student_exam_records WHERE id = $1", examColumns)
	var row models.ExamRecordRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeErr("find exam record", err)
	}

	record := row.Domain()
	scores, err := r.subjectScoresByExam(ctx, []string{record.ID})
	if err != nil {
		return nil, err
	}
	if s, ok := scores[record.ID]; ok {
		record.SubjectScores = s
	}
	return &record, nil
}

// Create inserts a new exam record without subject scores.
func (r *ExamRepository) Create(ctx context.Context, record *models.ExamRecord) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO student_exam_records (id, student_id, exam_name, exam_type, exam_date, total_score, total_full_score, class_rank, grade_rank, notes, created_at, updated_at)
        VALUES (:id, :student_id, :exam_name, :exam_type, :exam_date, :total_score, :total_full_score, :class_rank, :grade_rank, :notes, :created_at, :updated_at)`
	row := models.ExamRecordRowOf(*record)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return storeErr("create exam record", err)
	}
	return nil
}

// Update modifies an exam record's scalar fields.
func (r *ExamRepository) Update(ctx context.Context, record *models.ExamRecord) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_exam_records SET exam_name = :exam_name, exam_type = :exam_type, exam_date = :exam_date,
        total_score = :total_score, total_full_score = :total_full_score, class_rank = :class_rank, grade_rank = :grade_rank,
        notes = :notes, updated_at = :updated_at WHERE id = :id`
	row := models.ExamRecordRowOf(*record)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return storeErr("update exam record", err)
	}
	return nil
}

// ReplaceSubjectScores swaps an exam's full subject score set. An
// empty slice clears the set.
func (r *ExamRepository) ReplaceSubjectScores(ctx context.Context, examRecordID string, scores []models.SubjectScore) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_exam_subject_scores WHERE exam_record_id = $1", examRecordID); err != nil {
		return storeErr("clear subject scores", err)
	}

	const query = `INSERT INTO student_exam_subject_scores (id, exam_record_id, subject, score, full_score, created_at)
        VALUES (:id, :exam_record_id, :subject, :score, :full_score, :created_at)`
	now := time.Now().UTC()
	for i := range scores {
		scores[i].ExamRecordID = examRecordID
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		row := models.SubjectScoreRowOf(scores[i])
		if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
			return storeErr("insert subject score", err)
		}
	}
	return nil
}

// Delete removes an exam record. Cascades clear its subject scores.
// Deleting an absent record is a no-op.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_exam_records WHERE id = $1", id); err != nil {
		return storeErr("delete exam record", err)
	}
	return nil
}

func (r *ExamRepository) subjectScoresByExam(ctx context.Context, examIDs []string) (map[string][]models.SubjectScore, error) {
	if len(examIDs) == 0 {
		return map[string][]models.SubjectScore{}, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM student_exam_subject_scores WHERE exam_record_id IN (?)
        ORDER BY subject ASC`, subjectScoreColumns), examIDs)
	if err != nil {
		return nil, fmt.Errorf("build subject scores query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.SubjectScoreRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storeErr("list subject scores", err)
	}

	byExam := make(map[string][]models.SubjectScore, len(examIDs))
	for _, row := range rows {
		score := row.Domain()
		byExam[score.ExamRecordID] = append(byExam[score.ExamRecordID], score)
	}
	return byExam, nil
}

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey holds the jti of the student's only valid login.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// StudentExamSessionStartKey returns the cache key for a student's exam session start
func (r *CacheKeyStruct) StudentExamSessionStartKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:session_start", studentID, examID)
}

// StudentAnswersKey is a hash of question id to raw answer JSON.
func (r *CacheKeyStruct) StudentAnswersKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:answers", studentID, examID)
}

// StudentSubmittedKey marks a submitted session. It outlives scoring and
// blocks autosaves from other connections until it expires.
func (r *CacheKeyStruct) StudentSubmittedKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:submitted", studentID, examID)
}

// ExamPaperKey returns the cache key for the redacted student paper of an exam.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamDurationKey returns the cache key for an exam's duration
func (r *CacheKeyStruct) ExamDurationKey(examID string) string {
	return fmt.Sprintf("exam:%s:duration", examID)
}

// ExamAnswerKey holds the full questions, answers included, used for grading.
func (r *CacheKeyStruct) ExamAnswerKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// ExamSettingsKey returns the cache key for an exam's runtime flags.
func (r *CacheKeyStruct) ExamSettingsKey(examID string) string {
	return fmt.Sprintf("exam:%s:settings", examID)
}

// ExamMonitorChannel is the pub/sub channel carrying live session events of an exam.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()

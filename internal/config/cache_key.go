package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SurveyStructureKey returns the cache key for a survey's structural
// snapshot (questions plus enable-when rules).
func (r *CacheKeyStruct) SurveyStructureKey(surveyID int) string {
	return fmt.Sprintf("survey:%d:structure", surveyID)
}

// ExportStatusKey returns the cache key for an export job's status.
func (r *CacheKeyStruct) ExportStatusKey(jobID string) string {
	return fmt.Sprintf("export:%s:status", jobID)
}

// ExportResultKey returns the cache key for an export job's result.
func (r *CacheKeyStruct) ExportResultKey(jobID string) string {
	return fmt.Sprintf("export:%s:result", jobID)
}

var CacheKey = NewCacheKeyStruct()

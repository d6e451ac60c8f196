package dto

// AnalyzeRequest is the form part of POST /api/v1/analyze. The résumé
// itself travels as the multipart file field "resume".
type AnalyzeRequest struct {
	JobID    int64  `validate:"required,gt=0"`
	Filename string `validate:"required,max=255"`
	Size     int64  `validate:"gt=0"`
}

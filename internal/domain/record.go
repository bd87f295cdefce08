package domain

// SubjectMap maps subject codes to subject names. One map is shared across all
// records parsed from a single payload.
type SubjectMap map[string]string

// ResultRecord is one examination outcome extracted from a payload.
type ResultRecord struct {
	ExaminationName string         `json:"examination_name"`
	Semester        string         `json:"semester"`
	Marks           map[string]any `json:"marks"`
}

// PersonRecord is one student's slice of a parsed payload. Photo is the raw
// JPEG bytes when the document carried one.
type PersonRecord struct {
	InstitutionCode string         `json:"institution_code"`
	InstitutionName string         `json:"institution_name"`
	Batch           string         `json:"batch"`
	ProgrammeCode   string         `json:"programme_code"`
	ProgrammeName   string         `json:"programme_name"`
	RollNum         string         `json:"roll_num"`
	StudentName     string         `json:"student_name"`
	Photo           []byte         `json:"photo,omitempty"`
	Results         []ResultRecord `json:"results"`
}

// Addressable reports whether the record carries every field needed to build
// its store path. Non-addressable records are excluded from store writes.
func (r PersonRecord) Addressable() bool {
	return r.InstitutionCode != "" && r.Batch != "" && r.RollNum != ""
}

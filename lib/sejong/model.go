package sejong

import "time"

// StudentInfo is the identity of a student as shown by the portal, fields
// that could not be found are left empty.
type StudentInfo struct {
	Major     string `json:"major"`
	StudentId string `json:"student_id"`
	Name      string `json:"name"`
	Grade     string `json:"grade"`
	// Status is passed through exactly as the portal renders it (ex. 재학).
	Status string `json:"status"`
}

type Certification struct {
	Area           string `json:"area"`
	RequiredCount  string `json:"required_count"`
	CertifiedCount string `json:"certified_count"`
}

type ExamRecord struct {
	Semester   string `json:"semester"`
	Area       string `json:"area"`
	BookTitle  string `json:"book_title"`
	ExamDate   string `json:"exam_date"`
	Score      string `json:"score"`
	PassStatus string `json:"pass_status"`
}

// SubjectRecord is used by both the subject substitution and the
// curriculum linked certification tables, they share the same columns.
type SubjectRecord struct {
	Semester    string `json:"semester"`
	SubjectName string `json:"subject_name"`
	Area        string `json:"area"`
	BookTitle   string `json:"book_title"`
	Completion  string `json:"completion"`
}

type ContestRecord struct {
	Semester    string `json:"semester"`
	ContestName string `json:"contest_name"`
	Area        string `json:"area"`
	BookTitle   string `json:"book_title"`
}

// ClassicReading holds the classic reading certification status. A table
// missing from the page results in an empty (never nil) slice.
type ClassicReading struct {
	Certifications       []Certification `json:"certifications"`
	ExamRecords          []ExamRecord    `json:"exam_records"`
	SubjectSubstitutions []SubjectRecord `json:"subject_substitutions"`
	ContestRecords       []ContestRecord `json:"contest_records"`
	CurriculumRecords    []SubjectRecord `json:"curriculum_records"`
}

// EmptyClassicReading returns a ClassicReading with every slice allocated.
func EmptyClassicReading() ClassicReading {
	return ClassicReading{
		Certifications:       []Certification{},
		ExamRecords:          []ExamRecord{},
		SubjectSubstitutions: []SubjectRecord{},
		ContestRecords:       []ContestRecord{},
		CurriculumRecords:    []SubjectRecord{},
	}
}

// ContactInfo is only available from the academic information system.
type ContactInfo struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	EnglishName string `json:"english_name"`
}

// AuthResult is the merged outcome of a full authentication.
//
// Success implies StudentInfo and ClassicReading were parsed, ContactInfo
// is nil whenever the secondary source could not be reached.
type AuthResult struct {
	Success         bool           `json:"success"`
	StudentInfo     StudentInfo    `json:"student_info"`
	ClassicReading  ClassicReading `json:"classic_reading"`
	ContactInfo     *ContactInfo   `json:"contact_info,omitempty"`
	AuthenticatedAt time.Time      `json:"authenticated_at"`
	RawHtml         string         `json:"raw_html,omitempty"`
}

// DhcAuthResult is the outcome of authenticating only against the classic
// reading portal.
type DhcAuthResult struct {
	Success         bool           `json:"success"`
	StudentInfo     StudentInfo    `json:"student_info"`
	ClassicReading  ClassicReading `json:"classic_reading"`
	AuthenticatedAt time.Time      `json:"authenticated_at"`
	RawHtml         string         `json:"raw_html,omitempty"`
}

// SisAuthResult is the outcome of authenticating only against the academic
// information system.
type SisAuthResult struct {
	Success         bool        `json:"success"`
	StudentInfo     StudentInfo `json:"student_info"`
	ContactInfo     ContactInfo `json:"contact_info"`
	AuthenticatedAt time.Time   `json:"authenticated_at"`
	RawJson         string      `json:"raw_json,omitempty"`
}

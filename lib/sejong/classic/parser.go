package classic

import (
	"bytes"
	"sejongauth/lib/sejong"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument parses the status page, any failure is a ParseError.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return nil, sejong.Errorf(sejong.ParseError, "parse status page: %w", err)
	}
	return doc, nil
}

var userInfoLabels = map[string]func(info *sejong.StudentInfo, value string){
	"학과명":    func(info *sejong.StudentInfo, value string) { info.Major = value },
	"학번":     func(info *sejong.StudentInfo, value string) { info.StudentId = value },
	"이름":     func(info *sejong.StudentInfo, value string) { info.Name = value },
	"학년":     func(info *sejong.StudentInfo, value string) { info.Grade = value },
	"사용자 상태": func(info *sejong.StudentInfo, value string) { info.Status = value },
}

// StudentInfoFromDocument reads the label/value rows of the user info table.
// A page without any labelled row is a ParseError.
func StudentInfoFromDocument(doc *goquery.Document) (sejong.StudentInfo, error) {
	labelled := 0
	info := sejong.StudentInfo{}
	for _, row := range userInfoSection.extractRows(doc) {
		label := column(row, 0)
		if label == "" {
			continue
		}
		labelled++
		value := strings.Join(row[1:], " ")
		if set, ok := userInfoLabels[label]; ok {
			set(&info, strings.TrimSpace(value))
		}
	}
	if labelled == 0 {
		return sejong.StudentInfo{}, sejong.Errorf(sejong.ParseError, "사용자 정보 테이블을 찾을 수 없습니다.")
	}
	return info, nil
}

// ClassicReadingFromDocument reads every certification table, tables absent
// from the page result in empty slices.
func ClassicReadingFromDocument(doc *goquery.Document) sejong.ClassicReading {
	reading := sejong.EmptyClassicReading()

	for _, row := range certificationSection.extractRows(doc) {
		area := column(row, 0)
		if area == "" {
			continue
		}
		reading.Certifications = append(reading.Certifications, sejong.Certification{
			Area:           area,
			RequiredCount:  column(row, 1),
			CertifiedCount: column(row, 2),
		})
	}
	for _, row := range examSection.extractRows(doc) {
		reading.ExamRecords = append(reading.ExamRecords, sejong.ExamRecord{
			Semester:   column(row, 0),
			Area:       column(row, 1),
			BookTitle:  column(row, 2),
			ExamDate:   column(row, 3),
			Score:      column(row, 4),
			PassStatus: column(row, 5),
		})
	}
	for _, row := range subjectSubstituteSection.extractRows(doc) {
		reading.SubjectSubstitutions = append(reading.SubjectSubstitutions, subjectRecord(row))
	}
	for _, row := range contestSection.extractRows(doc) {
		reading.ContestRecords = append(reading.ContestRecords, sejong.ContestRecord{
			Semester:    column(row, 0),
			ContestName: column(row, 1),
			Area:        column(row, 2),
			BookTitle:   column(row, 3),
		})
	}
	for _, row := range curriculumSection.extractRows(doc) {
		reading.CurriculumRecords = append(reading.CurriculumRecords, subjectRecord(row))
	}

	return reading
}

func subjectRecord(row []string) sejong.SubjectRecord {
	return sejong.SubjectRecord{
		Semester:    column(row, 0),
		SubjectName: column(row, 1),
		Area:        column(row, 2),
		BookTitle:   column(row, 3),
		Completion:  column(row, 4),
	}
}

func ParseStudentInfo(html string) (sejong.StudentInfo, error) {
	doc, err := ParseDocument(html)
	if err != nil {
		return sejong.StudentInfo{}, err
	}
	return StudentInfoFromDocument(doc)
}

func ParseClassicReading(html string) (sejong.ClassicReading, error) {
	doc, err := ParseDocument(html)
	if err != nil {
		return sejong.ClassicReading{}, err
	}
	return ClassicReadingFromDocument(doc), nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sejongauth/lib/sejong"

	"github.com/jedib0t/go-pretty/v6/table"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func render(t table.Writer) {
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func printJsonValue(value any) {
	serialized, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(serialized))
}

func printRemote(msg *structpb.Struct) {
	serialized, err := protojson.MarshalOptions{Multiline: true}.Marshal(msg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(serialized))
}

func printStudentInfo(info sejong.StudentInfo) {
	t := table.NewWriter()
	t.SetTitle("Student")
	t.AppendRows([]table.Row{
		{"Student ID", info.StudentId},
		{"Name", info.Name},
		{"Major", info.Major},
		{"Grade", info.Grade},
		{"Status", info.Status},
	})
	render(t)
}

func printContactInfo(contact *sejong.ContactInfo) {
	t := table.NewWriter()
	t.SetTitle("Contact")
	if contact == nil {
		t.AppendRow(table.Row{"not available"})
		render(t)
		return
	}
	t.AppendRows([]table.Row{
		{"Email", contact.Email},
		{"Phone", contact.PhoneNumber},
		{"English name", contact.EnglishName},
	})
	render(t)
}

func printClassicReading(reading sejong.ClassicReading) {
	{
		t := table.NewWriter()
		t.SetTitle("Certifications")
		t.AppendHeader(table.Row{"Area", "Required", "Certified"})
		for _, c := range reading.Certifications {
			t.AppendRow(table.Row{c.Area, c.RequiredCount, c.CertifiedCount})
		}
		render(t)
	}
	if len(reading.ExamRecords) > 0 {
		t := table.NewWriter()
		t.SetTitle("Exams")
		t.AppendHeader(table.Row{"Semester", "Area", "Book", "Date", "Score", "Result"})
		for _, e := range reading.ExamRecords {
			t.AppendRow(table.Row{e.Semester, e.Area, e.BookTitle, e.ExamDate, e.Score, e.PassStatus})
		}
		render(t)
	}
	printSubjects("Subject substitutions", reading.SubjectSubstitutions)
	if len(reading.ContestRecords) > 0 {
		t := table.NewWriter()
		t.SetTitle("Contests")
		t.AppendHeader(table.Row{"Semester", "Contest", "Area", "Book"})
		for _, c := range reading.ContestRecords {
			t.AppendRow(table.Row{c.Semester, c.ContestName, c.Area, c.BookTitle})
		}
		render(t)
	}
	printSubjects("Curriculum", reading.CurriculumRecords)
}

func printSubjects(title string, records []sejong.SubjectRecord) {
	if len(records) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Semester", "Subject", "Area", "Book", "Completion"})
	for _, s := range records {
		t.AppendRow(table.Row{s.Semester, s.SubjectName, s.Area, s.BookTitle, s.Completion})
	}
	render(t)
}

package classic

import (
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/sejongtest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseStudentInfo(t *testing.T) {
	info, err := ParseStudentInfo(sejongtest.StatusHtml)
	require.NoError(t, err)

	expected := sejong.StudentInfo{
		Major:     "컴퓨터공학과",
		StudentId: "20012345",
		Name:      "홍길동",
		Grade:     "3",
		Status:    "재학",
	}
	if diff := cmp.Diff(expected, info); diff != "" {
		t.Fatalf("student info mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClassicReading(t *testing.T) {
	reading, err := ParseClassicReading(sejongtest.StatusHtml)
	require.NoError(t, err)

	expected := sejong.ClassicReading{
		Certifications: []sejong.Certification{
			{Area: "서양의 역사와 사상", RequiredCount: "4", CertifiedCount: "2"},
			{Area: "동양의 역사와 사상", RequiredCount: "2", CertifiedCount: "1"},
			{Area: "동·서양의 문학", RequiredCount: "3", CertifiedCount: "0"},
			{Area: "과학 사상", RequiredCount: "1", CertifiedCount: "1"},
		},
		ExamRecords: []sejong.ExamRecord{
			{
				Semester:   "2023-2",
				Area:       "서양의 역사와 사상",
				BookTitle:  "군주론",
				ExamDate:   "2023-11-02",
				Score:      "80",
				PassStatus: "합격",
			},
			{
				Semester:   "2024-1",
				Area:       "동양의 역사와 사상",
				BookTitle:  "논어",
				ExamDate:   "2024-04-18",
				Score:      "",
				PassStatus: "불합격",
			},
		},
		SubjectSubstitutions: []sejong.SubjectRecord{},
		ContestRecords: []sejong.ContestRecord{
			{Semester: "2023-1", ContestName: "독서토론대회", Area: "과학 사상", BookTitle: "코스모스"},
		},
		CurriculumRecords: []sejong.SubjectRecord{
			{Semester: "2022-2", SubjectName: "고전읽기와 토론", Area: "서양의 역사와 사상", BookTitle: "국가", Completion: "이수"},
			{Semester: "2023-1", SubjectName: "동양고전강독", Area: "동양의 역사와 사상", BookTitle: "맹자", Completion: "미이수"},
		},
	}
	if diff := cmp.Diff(expected, reading); diff != "" {
		t.Fatalf("classic reading mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, reading.SubjectSubstitutions)
}

func TestParsePartialPage(t *testing.T) {
	_, err := ParseStudentInfo(sejongtest.StatusPartialHtml)
	require.ErrorIs(t, err, sejong.ErrParseError)

	reading, err := ParseClassicReading(sejongtest.StatusPartialHtml)
	require.NoError(t, err)
	require.Equal(t, []sejong.Certification{
		{Area: "과학 사상", RequiredCount: "1", CertifiedCount: "0"},
	}, reading.Certifications)

	require.NotNil(t, reading.ContestRecords)
	require.Empty(t, reading.ContestRecords)
	require.Empty(t, reading.ExamRecords)
	require.Empty(t, reading.SubjectSubstitutions)
	require.Empty(t, reading.CurriculumRecords)
}

func TestParseNonStatusPages(t *testing.T) {
	cases := []struct {
		name string
		html string
	}{
		{name: "empty", html: ""},
		{name: "login page", html: `<html><body><form action="/login"><input name="id"></form></body></html>`},
		{
			name: "heading without rows",
			html: `<div class="b-con-box"><h4 class="b-h4-tit01">사용자 정보</h4>` +
				`<table class="b-board-table"><tbody></tbody></table></div>`,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseStudentInfo(test.html)
			require.ErrorIs(t, err, sejong.ErrParseError)
			require.Equal(t, sejong.ParseError, sejong.KindOf(err))
		})
	}
}

func TestMissingLabelsAreEmpty(t *testing.T) {
	html := `<div class="b-con-box"><h4 class="b-h4-tit01">사용자 정보</h4>
<table class="b-board-table"><tbody>
<tr><th>학번</th><td> 19011111 </td></tr>
<tr><th>이름</th><td>김세종</td></tr>
</tbody></table></div>`

	info, err := ParseStudentInfo(html)
	require.NoError(t, err)
	require.Equal(t, sejong.StudentInfo{StudentId: "19011111", Name: "김세종"}, info)
}

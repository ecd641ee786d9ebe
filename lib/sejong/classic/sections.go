package classic

import (
	"sejongauth/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sectionLocator finds the rows of one table on the status page. Every
// table lives in a `.b-con-box` that also holds an `h4.b-h4-tit01` heading,
// the heading is what tells the tables apart.
type sectionLocator struct {
	Heading string
	// MinColumns is the least number of cells a row must have, shorter rows
	// (ex. "no data" placeholders) are dropped.
	MinColumns int
	// HeaderCell prepends the text of the row's <th> cells as the first
	// column.
	HeaderCell bool
}

var (
	userInfoSection          = sectionLocator{Heading: "사용자 정보", MinColumns: 1, HeaderCell: true}
	certificationSection     = sectionLocator{Heading: "영역별 인증현황", MinColumns: 3, HeaderCell: true}
	examSection              = sectionLocator{Heading: "인증 시험 현황", MinColumns: 6}
	subjectSubstituteSection = sectionLocator{Heading: "과목 대체 인증 현황", MinColumns: 5}
	contestSection           = sectionLocator{Heading: "대회 인증 현황", MinColumns: 4}
	curriculumSection        = sectionLocator{Heading: "교과연계 인증 현황", MinColumns: 5}
)

func (l sectionLocator) boxes(doc *goquery.Document) *goquery.Selection {
	return doc.Find(".b-con-box").FilterFunction(func(_ int, box *goquery.Selection) bool {
		found := false
		box.Find("h4.b-h4-tit01").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
			found = strings.Contains(htmlutil.CleanText(heading), l.Heading)
			return !found
		})
		return found
	})
}

// extractRows returns the cell texts of every row in the section, an absent
// section results in no rows. Empty cells are kept so columns never shift.
func (l sectionLocator) extractRows(doc *goquery.Document) [][]string {
	rows := [][]string{}
	l.boxes(doc).Find("table.b-board-table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row.Find("td"))
		if l.HeaderCell {
			cells = append([]string{htmlutil.CleanText(row.Find("th"))}, cells...)
		}
		if len(cells) < l.MinColumns {
			return
		}
		rows = append(rows, cells)
	})
	return rows
}

func column(cells []string, index int) string {
	if index < 0 || index >= len(cells) {
		return ""
	}
	return cells[index]
}

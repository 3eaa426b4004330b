package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const chapterSheet = "Chapter Report"

var chapterHeaders = []interface{}{
	"Name", "Business", "Mobile", "City", "Chapter",
	"Business Given", "Business Received", "One-to-Ones",
	"Absences", "References Given", "References Received",
}

// WriteChapterWorkbook renders rows as a single-sheet xlsx workbook.
func WriteChapterWorkbook(w io.Writer, rows []ChapterRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", chapterSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(chapterSheet, "A1", &chapterHeaders); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.FullName, r.BusinessName, r.PersonalPhoneNumber, r.CityName, r.ChapterName,
			r.BusinessGiven, r.BusinessReceived, r.OneToOneCount,
			r.AbsentCount, r.ReferenceGiven, r.ReferenceReceived,
		}
		if err := f.SetSheetRow(chapterSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}

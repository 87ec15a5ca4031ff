package edit

import (
	"fmt"

	"github.com/hanedit/hanedit/model"
)

// InsertParagraph inserts a new paragraph with the given text after
// element index after in the section; after == -1 prepends. Returns the
// new paragraph's element index.
func (s *Session) InsertParagraph(section, after int, text string) (int, error) {
	sec, err := s.section(section)
	if err != nil {
		return 0, err
	}
	if after < -1 || after >= len(sec.Elements) {
		return 0, fmt.Errorf("insert position %d out of range [-1,%d): %w", after, len(sec.Elements), model.ErrNotFound)
	}
	s.checkpoint()
	para := &model.Paragraph{
		Runs:  []model.Run{{Text: text}},
		Start: -1, End: -1,
		Dirty: true,
	}
	if err := sec.InsertElement(after, para); err != nil {
		return 0, err
	}
	s.shiftPendingElements(section, after+1, 1)
	return after + 1, nil
}

// DeleteParagraph removes the paragraph at element index i. Tables
// wrapped inside the paragraph's span are removed with it; leaving them
// would orphan their markup inside a deleted region.
func (s *Session) DeleteParagraph(section, i int) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return err
	}
	s.checkpoint()

	for _, child := range para.ChildTables {
		for j, el := range sec.Elements {
			if el == model.Element(child) {
				sec.Elements = append(sec.Elements[:j], sec.Elements[j+1:]...)
				s.shiftPendingElements(section, j, -1)
				break
			}
		}
	}
	// Re-home and delete; child indices shifted above.
	for j, el := range sec.Elements {
		if el == model.Element(para) {
			if err := sec.DeleteElement(j); err != nil {
				return err
			}
			s.shiftPendingElements(section, j, -1)
			return nil
		}
	}
	return nil
}

// GetParagraphText returns the text of the paragraph at element index i.
func (s *Session) GetParagraphText(section, i int) (string, error) {
	sec, err := s.section(section)
	if err != nil {
		return "", err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return "", err
	}
	return para.GetText(), nil
}

// UpdateParagraph replaces the paragraph's text with a single run,
// keeping any control runs in place. preserveRuns keeps the existing run
// boundaries and character properties instead, distributing the new text
// across them.
func (s *Session) UpdateParagraph(section, i int, text string, preserveRuns bool) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return err
	}
	s.checkpoint()
	if preserveRuns {
		para.SetTextPreservingRuns(text)
	} else {
		para.SetText(text)
	}
	return nil
}

// AppendParagraphText appends text to the paragraph's last text run.
func (s *Session) AppendParagraphText(section, i int, text string) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return err
	}
	s.checkpoint()
	para.AppendText(text)
	return nil
}

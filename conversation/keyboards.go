package conversation

import (
	"fmt"
	"strconv"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
)

func mainMenu() []string {
	return []string{BtnWrite, BtnMaterials}
}

func batchMenu() []string {
	return []string{BtnAddMore, BtnManage, BtnSubmit}
}

func withCancel(items []string) []string {
	out := make([]string, 0, len(items)+1)
	out = append(out, items...)
	return append(out, BtnCancel)
}

func button(label string, a event.Action) model.Button {
	return model.Button{Label: label, Data: a.Encode()}
}

func pageCount(total, perPage int) int {
	return max(1, (total+perPage-1)/perPage)
}

// subjectButtons renders one page of the subject picker. Subject buttons
// carry the index into the full list so the page can be re-rendered freely.
func subjectButtons(subjects []string, page, perPage int) [][]model.Button {
	start := page * perPage
	end := min(start+perPage, len(subjects))

	var rows [][]model.Button
	for i := start; i < end; i++ {
		label := utils.SubjectEmoji(subjects[i]) + " " + subjects[i]
		rows = append(rows, []model.Button{button(label, event.Action{Kind: event.SubjectPick, Index: i})})
	}

	var nav []model.Button
	if page > 0 {
		nav = append(nav, button("⬅️ Prev", event.Action{Kind: event.SubjectPage, Index: page - 1}))
	}
	nav = append(nav, button(fmt.Sprintf("📄 %d/%d", page+1, pageCount(len(subjects), perPage)),
		event.Action{Kind: event.SubjectPageNoop}))
	if end < len(subjects) {
		nav = append(nav, button("Next ➡️", event.Action{Kind: event.SubjectPage, Index: page + 1}))
	}
	rows = append(rows, nav)
	rows = append(rows, []model.Button{button(BtnCancel, event.Action{Kind: event.CancelFlow})})
	return rows
}

func ratingButtons() [][]model.Button {
	row := make([]model.Button, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, button(strconv.Itoa(i)+" ⭐", event.Action{Kind: event.Score, Index: i}))
	}
	return [][]model.Button{row}
}

func manageButtons(drafts []*model.Draft) [][]model.Button {
	rows := make([][]model.Button, 0, len(drafts)+2)
	for i, d := range drafts {
		rows = append(rows, []model.Button{
			button(fmt.Sprintf("✏️ Edit #%d: %s", i+1, utils.Truncate(d.ReviewedParty, 22)),
				event.Action{Kind: event.DraftEdit, Index: i}),
			button(fmt.Sprintf("🗑️ Delete #%d", i+1), event.Action{Kind: event.DraftDelete, Index: i}),
		})
	}
	rows = append(rows,
		[]model.Button{button("🚀 Submit All", event.Action{Kind: event.DraftSubmit})},
		[]model.Button{button("➕ Add Another", event.Action{Kind: event.DraftAdd})},
	)
	return rows
}

package ui

import (
	"fmt"
	"strconv"

	"github.com/cheggaaa/pb/v3"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/utils"
)

const progressTemplate = `{{ string . "prefix" }} {{ etime . }}`

// Console is the terminal front end: status line, confirmation prompt,
// crawl progress and the result table.
type Console struct {
	AssumeYes bool

	bar    *pb.ProgressBar
	log    *zap.SugaredLogger
	prompt func(msg string) (bool, error)
}

// NewConsole creates a console. With assumeYes the confirmation prompt is
// answered yes without asking.
func NewConsole(assumeYes bool, log *zap.SugaredLogger) *Console {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Console{AssumeYes: assumeYes, log: log, prompt: interactiveConfirm}
}

func interactiveConfirm(msg string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(msg)
}

// Status prints a status message
func (c *Console) Status(msg string) {
	pterm.Info.Println(msg)
}

// Confirm asks a yes/no question, defaulting to no. When no answer can be
// read, for example without a terminal, the answer is no.
func (c *Console) Confirm(msg string) bool {
	if c.AssumeYes {
		return true
	}
	ok, err := c.prompt(msg)
	if err != nil {
		c.log.Warnw("Confirmation prompt failed, pass --yes to skip it", "error", err)
		pterm.Warning.Println("確認できませんでした。--yes を指定すると確認を省略できます")
		return false
	}
	return ok
}

// Progress shows the running total of a crawl in a progress line that stays
// up across page loads.
func (c *Console) Progress(total int) {
	if c.bar == nil {
		c.bar = pb.New(0)
		c.bar.SetTemplateString(progressTemplate)
		c.bar.Start()
	}
	c.bar.Set("prefix", ProgressMessage(total))
	c.bar.SetCurrent(int64(total))
}

// Finished closes the progress line and reports the final count
func (c *Console) Finished(total int) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	pterm.Success.Println(FinishedMessage(total))
}

// ShowControls prints the summary of a loaded listing and the sort options
func (c *Console) ShowControls(summary string) error {
	pterm.DefaultSection.Println(summary)
	items := make([]pterm.BulletListItem, 0, len(models.SortKeys))
	for _, k := range models.SortKeys {
		items = append(items, pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("--sort %s  %s", k, k.Label())})
	}
	return pterm.DefaultBulletList.WithItems(items).Render()
}

// PrintJobs renders the listing as a table, in board order
func (c *Console) PrintJobs(jobs []models.DisplayedJob) error {
	return pterm.DefaultTable.WithHasHeader().WithData(JobRows(jobs, ColorizeWage)).Render()
}

// ProgressMessage is the text of the crawl overlay
func ProgressMessage(total int) string {
	return fmt.Sprintf("データ取得中... 現在 %d 件取得済み", total)
}

// FinishedMessage is the text shown when a crawl completes
func FinishedMessage(total int) string {
	return fmt.Sprintf("全件取得完了しました！ 合計: %d件", total)
}

// JobRows builds table rows for jobs, with a header row first
func JobRows(jobs []models.DisplayedJob, wage func(int) string) pterm.TableData {
	rows := pterm.TableData{{"#", "賃金 (下限)", "賃金 (上限)", "就業時間", "ID"}}
	for i, job := range jobs {
		id := ""
		if job.Element != nil {
			id = job.Element.AttrOr("id", "")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			wage(job.Data.Salary.Min),
			wage(job.Data.Salary.Max),
			utils.FormatDuration(job.Data.Hours),
			id,
		})
	}
	return rows
}

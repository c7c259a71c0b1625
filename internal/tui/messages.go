package tui

import "github.com/Veraticus/ifrec/internal/model"

type runsLoadedMsg struct {
	err  error
	runs []model.Run
}

type resultsLoadedMsg struct {
	err     error
	run     model.Run
	results []model.ValidationResult
	tables  []model.TableResult
}

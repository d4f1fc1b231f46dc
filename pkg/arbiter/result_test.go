package arbiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinnerIndexHighestScoreWins(t *testing.T) {
	summaries := []PlayerSummary{
		{Name: "A", Score: 10},
		{Name: "B", Score: 20},
		{Name: "C", Score: 5},
	}
	assert.Equal(t, 1, winnerIndex(summaries))
}

func TestWinnerIndexTiebreaksOnValidMoves(t *testing.T) {
	summaries := []PlayerSummary{
		{Name: "A", Score: 10, ValidMoves: 8},
		{Name: "B", Score: 10, ValidMoves: 4},
	}
	assert.Equal(t, 1, winnerIndex(summaries), "fewer valid moves for the same score should win")
}

func TestWinnerIndexTiebreaksOnInvalidMoves(t *testing.T) {
	summaries := []PlayerSummary{
		{Name: "A", Score: 10, ValidMoves: 4, InvalidMoves: 3},
		{Name: "B", Score: 10, ValidMoves: 4, InvalidMoves: 1},
	}
	assert.Equal(t, 1, winnerIndex(summaries))
}

func TestWinnerIndexTrueTieReturnsMinusOne(t *testing.T) {
	summaries := []PlayerSummary{
		{Name: "A", Score: 10, ValidMoves: 4, InvalidMoves: 2},
		{Name: "B", Score: 10, ValidMoves: 4, InvalidMoves: 2},
	}
	assert.Equal(t, -1, winnerIndex(summaries))
}

func TestSummaryReportsTieLine(t *testing.T) {
	result := &Result{
		Players: []PlayerSummary{{Name: "A", Score: 3}, {Name: "B", Score: 3}},
		Winner:  -1,
	}
	assert.Contains(t, Summary(result), "Tie")
}

func TestSummaryReportsWinnerLine(t *testing.T) {
	result := &Result{
		Players: []PlayerSummary{{Name: "A", Score: 3}, {Name: "B", Score: 9}},
		Winner:  1,
	}
	assert.Contains(t, Summary(result), "Winner: B with 9 points")
}

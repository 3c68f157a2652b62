package main

import (
	"errors"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/plan"
)

func TestReport(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pos := token.Position{Filename: "order.go", Line: 4}

	var first, second diagnostic.Diagnostics
	first.AddInfo(diagnostic.CodeGenerated, "InsertableOrder with 2 of 4 fields", "Order", pos)
	first.AddWarning(diagnostic.CodeUnusedExclusion, `exclusion "updated_at" matches no field`, "Order", pos)
	second.AddError(errors.New("boom"), "Cart", pos)

	n := report(zap.New(core), []result{
		{Plan: &plan.ResolvedPlan{Diagnostics: first}},
		{Plan: &plan.ResolvedPlan{Diagnostics: second}},
	})
	assert.Equal(t, 1, n)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "InsertableOrder with 2 of 4 fields")
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Contains(t, entries[2].Message, "boom")
}

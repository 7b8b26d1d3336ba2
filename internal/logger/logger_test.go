package logger_test

import (
	"testing"

	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/test"
)

func TestMsgIDs(t *testing.T) {
	for id := logger.MsgID_None; id <= logger.MsgID_END; id++ {
		str := logger.MsgIDToString(id)
		if str == "" {
			continue
		}

		overrides := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(str, logger.LevelError, overrides)
		if len(overrides) == 0 {
			t.Fatalf("Failed to find message id(s) for the string %q", str)
		}

		for k, v := range overrides {
			test.AssertEqual(t, logger.MsgIDToString(k), str)
			test.AssertEqual(t, v, logger.LevelError)
		}
	}
}

func TestOverrides(t *testing.T) {
	overrides := map[logger.MsgID]logger.LogLevel{
		logger.MsgID_ESM_NonLiteralSpecifier: logger.LevelError,
		logger.MsgID_ESM_DynamicImport:       logger.LevelSilent,
	}
	log := logger.NewDeferLog(overrides)
	log.AddID(logger.MsgID_ESM_NonLiteralSpecifier, logger.Warning, nil, logger.Range{}, "promoted")
	log.AddID(logger.MsgID_ESM_DynamicImport, logger.Warning, nil, logger.Range{}, "dropped")
	log.AddID(logger.MsgID_ESM_ImportMeta, logger.Warning, nil, logger.Range{}, "kept")

	test.AssertEqual(t, log.HasErrors(), true)
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 2)
	test.AssertEqual(t, msgs[0].Kind, logger.Error)
	test.AssertEqual(t, msgs[0].Text, "promoted")
	test.AssertEqual(t, msgs[1].Kind, logger.Warning)
	test.AssertEqual(t, msgs[1].Text, "kept")
}

func TestMsgString(t *testing.T) {
	source := test.SourceForTest("let a = 1\nlet b = @\n")
	msg := logger.Msg{
		Kind:     logger.Error,
		Text:     "Unexpected \"@\"",
		Location: logger.LocationOrNil(&source, logger.Range{Loc: logger.Loc{Start: 18}, Len: 1}),
	}
	text := msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{})
	test.AssertEqualWithDiff(t, text, "<stdin>:2:8: error: Unexpected \"@\"\nlet b = @\n        ^\n")
}

func TestLocForLineColumn(t *testing.T) {
	source := test.SourceForTest("a\nbc\ndef")
	test.AssertEqual(t, source.LocForLineColumn(1, 0).Start, int32(0))
	test.AssertEqual(t, source.LocForLineColumn(2, 1).Start, int32(3))
	test.AssertEqual(t, source.LocForLineColumn(3, 2).Start, int32(7))
	test.AssertEqual(t, source.LocForLineColumn(9, 0).Start, int32(9))
}

package logger

// Warnings and notes get a message ID so "--log-override" can change their
// level. Errors do not: turning an error into a non-error would let a broken
// transform report success.
type MsgID = uint8

const (
	MsgID_None MsgID = iota

	// Module rewrite
	MsgID_ESM_NonLiteralSpecifier
	MsgID_ESM_ReservedName
	MsgID_ESM_DynamicImport
	MsgID_ESM_ImportMeta

	// Printer
	MsgID_Printer_PrivateMemberRenamed

	MsgID_END // Keep this at the end (used only for tests)
)

func StringToMsgIDs(str string, logLevel LogLevel, overrides map[MsgID]LogLevel) {
	switch str {
	case "non-literal-specifier":
		overrides[MsgID_ESM_NonLiteralSpecifier] = logLevel
	case "reserved-name":
		overrides[MsgID_ESM_ReservedName] = logLevel
	case "dynamic-import":
		overrides[MsgID_ESM_DynamicImport] = logLevel
	case "import-meta":
		overrides[MsgID_ESM_ImportMeta] = logLevel
	case "private-member-renamed":
		overrides[MsgID_Printer_PrivateMemberRenamed] = logLevel

	// Group names
	case "esm":
		for id := MsgID_ESM_NonLiteralSpecifier; id <= MsgID_ESM_ImportMeta; id++ {
			overrides[id] = logLevel
		}
	}
}

func MsgIDToString(id MsgID) string {
	switch id {
	case MsgID_ESM_NonLiteralSpecifier:
		return "non-literal-specifier"
	case MsgID_ESM_ReservedName:
		return "reserved-name"
	case MsgID_ESM_DynamicImport:
		return "dynamic-import"
	case MsgID_ESM_ImportMeta:
		return "import-meta"
	case MsgID_Printer_PrivateMemberRenamed:
		return "private-member-renamed"
	}
	return ""
}

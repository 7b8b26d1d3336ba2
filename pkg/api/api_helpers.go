package api

import "github.com/esm2cjs/esm2cjs/internal/logger"

func convertLocationToPublic(loc *logger.MsgLocation) *Location {
	if loc == nil {
		return nil
	}
	return &Location{
		File:     loc.File,
		Line:     loc.Line,
		Column:   loc.Column,
		Length:   loc.Length,
		LineText: loc.LineText,
	}
}

func convertMessagesToPublic(kind logger.MsgKind, msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind == kind {
			filtered = append(filtered, Message{
				ID:       logger.MsgIDToString(msg.ID),
				Text:     msg.Text,
				Location: convertLocationToPublic(msg.Location),
			})
		}
	}
	return filtered
}

package resolver

import (
	"strings"
)

const removedPrefix = "[removed:"

// RemovedMarker возвращает пометку о снятии позиции с решения.
func RemovedMarker(lineItemID string) string {
	return removedPrefix + lineItemID + "]"
}

// IsRemoved сообщает, что в причине решения позиция явно помечена как снятая.
func IsRemoved(reason, lineItemID string) bool {
	return strings.Contains(reason, RemovedMarker(lineItemID))
}

// MarkRemoved добавляет пометку о снятии позиции, если её ещё нет.
func MarkRemoved(reason, lineItemID string) string {
	if IsRemoved(reason, lineItemID) {
		return reason
	}
	if reason == "" {
		return RemovedMarker(lineItemID)
	}
	return reason + " " + RemovedMarker(lineItemID)
}

// ClearRemoved убирает пометку о снятии позиции (позиция снова выиграна).
func ClearRemoved(reason, lineItemID string) string {
	marker := RemovedMarker(lineItemID)
	if !strings.Contains(reason, marker) {
		return reason
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(reason, marker, "")), " ")
}

// WithText заменяет текстовую часть причины, сохраняя пометки о снятых позициях.
func WithText(reason, text string) string {
	var markers []string
	for _, f := range strings.Fields(reason) {
		if strings.HasPrefix(f, removedPrefix) && strings.HasSuffix(f, "]") {
			markers = append(markers, f)
		}
	}
	parts := make([]string, 0, len(markers)+1)
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(append(parts, markers...), " ")
}

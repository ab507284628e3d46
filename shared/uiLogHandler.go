// =================================================================================
//
//			fox-fx - https://www.foxhollow.cc/projects/fox-fx/
//
//		 fox-fx runs a live chain of audio effect plugins between the
//	  inputs and outputs of the JACK audio server and reports meters
//
//		 Copyright (c) 2024 Steve Cross <flip@foxhollow.cc>
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================
package shared

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"fox-fx/display"
)

// UiLogHandler forwards log records to the active display.
type UiLogHandler struct {
	level         slog.Level
	ui            display.UI
	errorCallback func(string)
	attrs         []slog.Attr
}

func NewUiLogHandler(out display.UI, level slog.Level, errorCallback func(string)) *UiLogHandler {
	h := &UiLogHandler{
		level:         level,
		ui:            out,
		errorCallback: errorCallback,
		attrs:         make([]slog.Attr, 0),
	}

	return h
}

func (h *UiLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)

	appendAttr := func(attr slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%s", attr.Key, attr.Value.String())
		return true
	}

	for _, attr := range h.attrs {
		appendAttr(attr)
	}
	r.Attrs(appendAttr)

	message := sb.String()
	h.ui.WriteLevelLog(r.Level, message)

	if r.Level >= slog.LevelError && h.errorCallback != nil {
		h.errorCallback(message)
	}

	return nil
}

func (h *UiLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *UiLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clone(h.attrs), attrs...)

	return &clone
}

func (h *UiLogHandler) WithGroup(name string) slog.Handler {
	return h
}

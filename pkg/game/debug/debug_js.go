//go:build js && wasm

package debug

import (
	"fmt"
	"syscall/js"
)

// Log はブラウザのコンソールに debug レベルで出す
func Log(format string, args ...any) {
	js.Global().Get("console").Call("debug", "[golad] "+fmt.Sprintf(format, args...))
}

package analysis

// Identifiers every ECMAScript environment provides
var builtinGlobals = []string{
	"undefined", "NaN", "Infinity", "globalThis", "arguments",
	"Object", "Function", "Array", "Number", "String", "Boolean", "Symbol", "BigInt",
	"Date", "RegExp", "Error", "EvalError", "RangeError", "ReferenceError",
	"SyntaxError", "TypeError", "URIError", "AggregateError",
	"Math", "JSON", "Reflect", "Proxy", "Intl", "Atomics",
	"Promise", "Map", "Set", "WeakMap", "WeakSet", "WeakRef", "FinalizationRegistry",
	"ArrayBuffer", "SharedArrayBuffer", "DataView",
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
	"Int32Array", "Uint32Array", "Float32Array", "Float64Array",
	"BigInt64Array", "BigUint64Array",
	"parseInt", "parseFloat", "isNaN", "isFinite",
	"encodeURI", "encodeURIComponent", "decodeURI", "decodeURIComponent",
	"escape", "unescape", "eval",
}

// Identifiers a browser page provides
var browserGlobals = []string{
	"window", "self", "document", "navigator", "location", "history", "screen",
	"console", "alert", "confirm", "prompt",
	"setTimeout", "clearTimeout", "setInterval", "clearInterval",
	"requestAnimationFrame", "cancelAnimationFrame", "queueMicrotask",
	"fetch", "Request", "Response", "Headers", "FormData", "URL", "URLSearchParams",
	"localStorage", "sessionStorage", "indexedDB", "crypto", "performance",
	"Event", "CustomEvent", "EventTarget", "AbortController", "AbortSignal",
	"Blob", "File", "FileReader", "Image", "Audio",
	"HTMLElement", "Element", "Node", "getComputedStyle", "matchMedia",
	"IntersectionObserver", "MutationObserver", "ResizeObserver",
	"WebSocket", "Worker", "XMLHttpRequest", "structuredClone",
	"atob", "btoa", "TextEncoder", "TextDecoder",
}

func globalSet(browser bool, extra []string) map[string]bool {
	set := make(map[string]bool, len(builtinGlobals)+len(browserGlobals)+len(extra))
	for _, name := range builtinGlobals {
		set[name] = true
	}
	if browser {
		for _, name := range browserGlobals {
			set[name] = true
		}
	}
	for _, name := range extra {
		set[name] = true
	}
	return set
}

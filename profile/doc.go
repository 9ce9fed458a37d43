// Package profile provides optional runtime profiling for formkit.
//
// Profiling is implemented with [github.com/pkg/profile] and compiled in only
// when building with the "pprof" build tag ([Tag]). Without the tag, [Modes]
// reports no modes and [Config.Start] always returns a no-op controller.
//
//	go build -tags pprof .
//	formkit --pprof-mode cpu --pprof-dir ./profiles form order.cfg --set A=Acme
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// The parser and the form model benchmarks are the usual profiling targets:
//
//	go test -tags pprof -bench . -cpuprofile cpu.pprof ./conf ./form
//
// With the tag, the package also imports [net/http/pprof], which registers
// its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

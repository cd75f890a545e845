//go:build js && wasm

package main

import (
	"encoding/json"
	"path"
	"sort"
	"syscall/js"

	"tagscope/internal/adapter/analyzer"
	"tagscope/internal/adapter/imports"
	"tagscope/internal/adapter/lang"
	"tagscope/internal/adapter/memstore"
	"tagscope/internal/domain"
	"tagscope/internal/usecase"
)

const project = "/browser"

var (
	registry  *lang.Registry
	extractor *analyzer.Extractor
	store     *memstore.SnapshotStore
	sources   map[string]string
)

func init() {
	registry = lang.NewRegistry(nil)
	extractor = analyzer.NewExtractor(registry)
	store = memstore.NewSnapshotStore()
	sources = make(map[string]string)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("tagscopeAdd", js.FuncOf(addSource))
	js.Global().Set("tagscopeBuild", js.FuncOf(buildIndex))
	js.Global().Set("tagscopeClear", js.FuncOf(clearIndex))
	js.Global().Set("tagscopeStats", js.FuncOf(getStats))

	<-c
}

func addSource(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: tagscopeAdd(filename, content)")
	}

	filename := path.Join(project, path.Clean("/"+args[0].String()))
	if _, ok := lang.LanguageOf(filename); !ok {
		return makeError("unsupported file: " + filename)
	}
	sources[filename] = args[1].String()

	return makeResult(map[string]interface{}{
		"success":  true,
		"filename": filename,
	})
}

// buildIndex links every added source. Includes resolve only against other
// added sources.
func buildIndex(this js.Value, args []js.Value) interface{} {
	files := make([]string, 0, len(sources))
	for f := range sources {
		files = append(files, f)
	}
	sort.Strings(files)

	resolver := imports.NewResolver(project, files)
	analyses := make([]domain.FileAnalysis, len(files))
	edges := make([][]domain.ImportEdge, len(files))
	for i, f := range files {
		profile, _ := registry.ForPath(f)
		analyses[i] = extractor.Analyze(f, sources[f], profile)

		raws, err := imports.Extract(f, sources[f])
		if err != nil {
			return makeError("import scan failed: " + err.Error())
		}
		for _, raw := range raws {
			edges[i] = append(edges[i], resolver.ClassifyKnown(i, f, raw))
		}
	}

	idx, _ := usecase.Link(project, files, analyses, edges, registry)
	if err := store.PutSnapshot(idx); err != nil {
		return makeError("store failed: " + err.Error())
	}

	result, err := json.Marshal(usecase.ExportIndex(idx))
	if err != nil {
		return makeError("encode failed: " + err.Error())
	}
	return string(result)
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	sources = make(map[string]string)
	store.DeleteSnapshot(project)
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	infos, _ := store.ListSnapshots()
	if len(infos) == 0 {
		return makeResult(map[string]interface{}{
			"built":   false,
			"sources": len(sources),
		})
	}

	info := infos[0]
	return makeResult(map[string]interface{}{
		"built":   true,
		"sources": len(sources),
		"id":      info.ID,
		"files":   info.Files,
		"tags":    info.Tags,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}

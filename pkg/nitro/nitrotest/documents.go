package nitrotest

import (
	"fmt"
)

// SystemCPU builds a stat/systemcpu document, one entry per usage value.
func SystemCPU(usage ...string) map[string]interface{} {
	cpus := make([]map[string]interface{}, 0, len(usage))
	for i, use := range usage {
		cpus = append(cpus, map[string]interface{}{
			"id":        fmt.Sprintf("%d", i),
			"percpuuse": use,
		})
	}

	return okDocument("systemcpu", cpus)
}

// SystemMemory builds a stat/systemmemory document.
func SystemMemory(usage string) map[string]interface{} {
	return okDocument("systemmemory", map[string]interface{}{
		"memusagepcnt": usage,
		"memuseinmb":   "1024",
	})
}

// HANode builds a stat/hanode document.
func HANode(status, state, masterState, transTime string) map[string]interface{} {
	return okDocument("hanode", map[string]interface{}{
		"hacurstatus":      status,
		"hacurstate":       state,
		"hacurmasterstate": masterState,
		"transtime":        transTime,
	})
}

// LBVServer builds a stat/lbvserver/<name> document.
func LBVServer(name, health string) map[string]interface{} {
	return okDocument("lbvserver", []map[string]interface{}{{
		"name":       name,
		"vslbhealth": health,
		"state":      "UP",
		"type":       "HTTP",
	}})
}

// Empty builds a document for a resource type without entries.
func Empty(resource string) map[string]interface{} {
	return okDocument(resource, []interface{}{})
}

func okDocument(resource string, data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"errorcode": 0,
		"message":   "Done",
		"severity":  "NONE",
		resource:    data,
	}
}

// Package model defines the data exchanged with the scoring service and the
// form engine: model descriptors, per-model input schemas, raw form values,
// typed prediction payloads, and normalised prediction results. Every field a
// model requires is a numeric input; FieldSpec order is display order only.
// FormValues holds raw text so partial input such as "-0." survives editing,
// and only the payload builder converts it into numbers.
package model

// Package scoring is the HTTP client for the external fraud scoring service.
// It covers the three endpoints the form engine consumes:
//
//	GET  /api/models/list                 -> [{id, name}]
//	GET  /api/models/params?model_id=<id> -> {model_id, display_name, required_features, error?}
//	POST /api/predict                     -> {prediction, isFraud, fraudProbability, modelUsed?, error?}
//
// Each method converts failures into data at its boundary: ListModels degrades
// to an empty catalog, GetSchema returns a well formed schema with Error set
// alongside a *SchemaFetchError, and Predict never returns an error at all.
package scoring

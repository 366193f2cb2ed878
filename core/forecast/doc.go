// Package forecast turns historical waste observations into next-period
// forecasts. Forecasts are an input to allocation; callers with their own
// model can supply entries directly and skip this package.
package forecast

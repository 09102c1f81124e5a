// ABOUTME: Regression error metrics: R², MAE, MSE and RMSE.
// ABOUTME: All take the true values first and predictions second.
package regress

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// R2 is the coefficient of determination against the mean of yTrue.
// It is negative when the predictions are worse than that mean and 0 when
// yTrue is constant.
func R2(yTrue, yPred []float64) float64 {
	m := stat.Mean(yTrue, nil)
	var ssTot, ssRes float64
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

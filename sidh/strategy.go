package sidh

import "github.com/quantumsafe/isogeny/utils"

// computeStrategy returns the optimal walk strategy table for n levels,
// where stepCost is the cost of one multiplication step and evalCost
// the cost of one isogeny evaluation.
//
// strat[k], for 1 <= k < n, is the number of multiplication steps to
// take when k levels remain before the next isogeny computation. Any
// table with strat[1] = 1 and 1 <= strat[k] < k yields a correct walk;
// the dynamic program below picks the one minimizing total cost, per
// the balanced-strategy recurrence of de Feo-Jao-Plut:
//
//	C(k) = min_{1 <= s < k} C(s) + C(k-s) + s*stepCost + (k-s)*evalCost
func computeStrategy(n int, stepCost, evalCost float64) []int {
	if n < 1 {
		return nil
	}
	cost := make([]float64, n+1)
	strat := make([]int, n+1)
	strat[1] = 1
	for k := 2; k <= n; k++ {
		costs := make([]float64, k-1)
		for s := 1; s < k; s++ {
			costs[s-1] = cost[s] + cost[k-s] + float64(s)*stepCost + float64(k-s)*evalCost
		}
		split := utils.ArgMin(costs) + 1
		cost[k], strat[k] = costs[split-1], split
	}
	return strat[:n]
}

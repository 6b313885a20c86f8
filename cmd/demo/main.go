// Example usage of the causalgo package
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheoVerhelst/causalgo/estimators"
	"github.com/TheoVerhelst/causalgo/expressions"
	"github.com/TheoVerhelst/causalgo/factors"
	"github.com/TheoVerhelst/causalgo/graph"
	"github.com/TheoVerhelst/causalgo/inference"
	"github.com/TheoVerhelst/causalgo/models"
	"github.com/TheoVerhelst/causalgo/utils"
)

func main() {
	fmt.Println("=== causalgo: structural causal models in Go ===")

	fmt.Println("Example 1: probabilities and counterfactuals")
	counterfactualExample()
	fmt.Println()

	fmt.Println("Example 2: symbolic identification")
	identificationExample()
	fmt.Println()

	fmt.Println("Example 3: structure discovery with the PC algorithm")
	discoveryExample()
}

func counterfactualExample() {
	x, y, z := factors.Bool("X"), factors.Bool("Y"), factors.Bool("Z")
	dist := models.NewIndependentDistribution(42)
	_ = dist.AddBernoulli(x, 0.2)
	_ = dist.AddBernoulli(y, 0.4)
	xor, _ := factors.Xor([]*factors.Variable{x, y}, z)
	model, err := models.NewCausalModel(dist, []*factors.DiscreteFunction{xor})
	if err != nil {
		fmt.Printf("Error creating model: %v\n", err)
		return
	}

	observational := expressions.Equality(z, true)
	p, err := model.Probability(observational)
	if err != nil {
		fmt.Printf("Error evaluating: %v\n", err)
		return
	}
	fmt.Printf("P(%s) = %v\n", observational, p)

	counterfactual := expressions.Conjunction(
		expressions.Equality(z.Do(x, false), true),
		expressions.Equality(z.Do(x, true), false),
	)
	p, err = model.Probability(counterfactual)
	if err != nil {
		fmt.Printf("Error evaluating: %v\n", err)
		return
	}
	fmt.Printf("P(%s) = %v\n", counterfactual, p)
}

func identificationExample() {
	g := graph.NewCausalGraphFromEdges([][2]string{
		{"X", "Z1"},
		{"Z1", "Y"},
		{"Z2", "Z1"},
		{"U1", "X"},
		{"U1", "Y"},
		{"U2", "X"},
		{"U2", "Z2"},
		{"U3", "Z2"},
		{"U3", "Y"},
	})
	x := graph.NewSet("X")
	y := graph.NewSet("Y")
	latent := graph.NewSet("U1", "U2", "U3")

	forms, err := inference.ClosedForm(g, x, y, latent)
	if err != nil {
		fmt.Printf("Error identifying: %v\n", err)
		return
	}
	if len(forms) == 0 {
		fmt.Println("P(Y | do(X)) is not identifiable")
		return
	}
	fmt.Println("P(Y | do(X)) =")
	for _, form := range forms {
		fmt.Printf("  = %s\n", form)
	}
}

func discoveryExample() {
	system, err := estimators.GenerateLinearSystem(5, 6, -1, 1, 0.5, 1.5, 0.5, 2, 7)
	if err != nil {
		fmt.Printf("Error generating system: %v\n", err)
		return
	}
	df, err := estimators.SampleLinearSystem(system, 5000, 11)
	if err != nil {
		fmt.Printf("Error sampling: %v\n", err)
		return
	}

	// Round-trip the dataset through CSV, as an external dataset would
	// arrive.
	path := filepath.Join(os.TempDir(), "causalgo_demo.csv")
	if err := df.SaveCSV(path); err != nil {
		fmt.Printf("Error saving dataset: %v\n", err)
		return
	}
	defer os.Remove(path)
	df, err = utils.LoadCSV(path)
	if err != nil {
		fmt.Printf("Error loading dataset: %v\n", err)
		return
	}
	fmt.Printf("Dataset: %d samples of %v\n", df.Len(), df.Columns)

	test := estimators.NewGaussianIndependenceTest(df)
	pc := estimators.NewPC(test)
	learned, err := pc.Estimate(df.Columns, nil)
	if err != nil {
		fmt.Printf("Error learning: %v\n", err)
		return
	}

	fmt.Printf("True edges:    %v\n", system.Edges())
	fmt.Printf("Learned edges: %v\n", learned.Edges())
}

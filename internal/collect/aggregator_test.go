package collect

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"cloudcollector/models"
)

func TestAggregatorConcurrentAdd(t *testing.T) {
	agg := NewAggregator()

	var wg sync.WaitGroup
	for p := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				agg.Add(models.ResourceCollection{Service: fmt.Sprintf("p%d", p), ResourceType: fmt.Sprintf("r%d", i)})
			}
		}()
	}
	wg.Wait()

	got := agg.Snapshot()
	assert.Len(t, got, 400)
	assert.Len(t, agg.Snapshot(), 400)
}

func TestAggregatorKeepsDuplicates(t *testing.T) {
	agg := NewAggregator()
	r := models.ResourceCollection{Service: "ec2", Region: "eu-west-1", ResourceType: "vpcs"}
	agg.Add(r, r)
	assert.Equal(t, []models.ResourceCollection{r, r}, agg.Snapshot())
}

func TestAggregatorEmpty(t *testing.T) {
	assert.Empty(t, NewAggregator().Snapshot())
}

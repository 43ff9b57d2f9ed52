package navigation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPortReplace(t *testing.T) {
	port := NewMemoryPort(ParseLocation("/"))
	assert.Equal(t, "/", port.Current().Path)

	var seen []string
	cancel := port.Observe(func(l Location) { seen = append(seen, l.String()) })

	port.Replace(ParseLocation("/lab"))
	port.Replace(ParseLocation("/lab"))
	assert.Equal(t, []string{"/lab", "/lab"}, seen, "every replacement notifies")
	assert.Equal(t, "/lab", port.Current().Path)

	cancel()
	port.Replace(ParseLocation("/ot"))
	assert.Len(t, seen, 2)
}

func TestMemoryPortReentrantReplaceIsFIFO(t *testing.T) {
	port := NewMemoryPort(ParseLocation("/"))

	var order []string
	port.Observe(func(l Location) {
		order = append(order, "a:"+l.Path)
		if l.Path == "/admin/doctors" {
			port.Replace(LoginLocation())
			// Delivered after this notification finishes.
			order = append(order, "a:after-replace:"+port.Current().Path)
		}
	})
	port.Observe(func(l Location) {
		order = append(order, "b:"+l.Path)
	})

	port.Replace(ParseLocation("/admin/doctors"))

	assert.Equal(t, []string{
		"a:/admin/doctors",
		"a:after-replace:/admin/doctors",
		"b:/admin/doctors",
		"a:/login",
		"b:/login",
	}, order)
	assert.Equal(t, "/login", port.Current().Path)
}

func TestMemoryPortConcurrentReplace(t *testing.T) {
	port := NewMemoryPort(ParseLocation("/"))

	var mu sync.Mutex
	var count int
	port.Observe(func(Location) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			port.Replace(ParseLocation("/lab"))
		}()
	}
	wg.Wait()

	// A goroutine may return while another drains its entry; wait for it.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 50
	}, time.Second, time.Millisecond)
}

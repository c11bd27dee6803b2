// Package templates holds the page components for the two dashboards.
// Pages are static shells: every chart and KPI hydrates through the
// Datastar SSE endpoints, so the components carry no server-side data.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

func component(t *template.Template, title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.Execute(w, title)
	})
}

// Diagnostic is the "Sales Driver" dashboard: trends, product mix,
// regions, discount behavior and the insight panel.
func Diagnostic() templ.Component {
	return component(diagnosticTemplate, "Sales Driver Dashboard")
}

// Decision is the executive dashboard: KPI snapshot, risk charts and the
// decision narrative.
func Decision() templ.Component {
	return component(decisionTemplate, "Sales Decision Dashboard")
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<script>
// Chart.js bridge for the Datastar signals. Each helper is called from a
// data-effect, so it re-renders whenever its signal is patched; charts are
// kept in a registry and updated in place instead of rebuilt.
window.charts = (function () {
	var live = {};
	function draw(id, type, labels, datasets, opts) {
		var el = document.getElementById(id);
		if (!el || typeof Chart === 'undefined') return;
		if (live[id]) {
			live[id].data.labels = labels;
			live[id].data.datasets = datasets;
			live[id].update();
			return;
		}
		live[id] = new Chart(el, {
			type: type,
			data: {labels: labels, datasets: datasets},
			options: Object.assign({responsive: true, animation: false}, opts || {})
		});
	}
	return {
		trend: function (id, points) {
			points = points || [];
			draw(id, 'line',
				points.map(function (p) { return p.month; }),
				[
					{label: 'Sales', data: points.map(function (p) { return p.sales; }), borderColor: '#2563eb', backgroundColor: 'rgba(37,99,235,.15)', fill: true},
					{label: 'Profit', data: points.map(function (p) { return p.profit; }), borderColor: '#16a34a', backgroundColor: 'rgba(22,163,74,.15)', fill: true}
				]);
		},
		bars: function (id, rows, labelKey, series) {
			rows = rows || [];
			draw(id, 'bar',
				rows.map(function (r) { return r[labelKey]; }),
				series.map(function (s) {
					return {label: s.label, data: rows.map(function (r) { return r[s.key]; }), backgroundColor: s.color};
				}));
		},
		hbars: function (id, rows, labelKey, valueKey, label, color) {
			rows = rows || [];
			draw(id, 'bar',
				rows.map(function (r) { return r[labelKey]; }),
				[{label: label, data: rows.map(function (r) { return r[valueKey]; }), backgroundColor: color}],
				{indexAxis: 'y'});
		}
	};
})();
</script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6fa;color:#222}
header{background:#1f2937;color:#fff;padding:1rem 2rem}
header h1{margin:0;font-size:1.3rem}
header .subtitle{color:#9ca3af;font-size:.9rem}
nav a{color:#93c5fd;margin-right:1rem;text-decoration:none}
main{padding:1.5rem 2rem}
.kpi-row{display:flex;gap:1rem;flex-wrap:wrap;margin-bottom:1.5rem}
.kpi{background:#fff;border-radius:8px;padding:1rem 1.5rem;min-width:10rem;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.kpi .label{font-size:.8rem;color:#6b7280;text-transform:uppercase}
.kpi .value{font-size:1.5rem;font-weight:600}
.grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(420px,1fr));gap:1rem}
.card{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.card h2{font-size:1rem;margin:0 0 .5rem}
.modern-table{width:100%;border-collapse:collapse;font-size:.85rem}
.modern-table th,.modern-table td{padding:.4rem .6rem;border-bottom:1px solid #e5e7eb;text-align:left}
.category-badge{background:#eef2ff;border-radius:4px;padding:.1rem .4rem}
.loss{color:#dc2626}
.filters{margin-bottom:1rem}
.filters input,.filters button{padding:.35rem .5rem;margin-right:.5rem}
</style>
</head>`

const diagnosticPage = pageHead + `
<body data-signals="{summary:{},monthlyData:[],categoryData:[],regionData:[],insights:{}}"
      data-on-load="@get('/sse/refresh-all')">
<header>
<h1>Sales Driver Dashboard</h1>
<div class="subtitle">Why sales change: trends, product mix, regions, discount behavior, profit leaks</div>
<nav><a href="/">Diagnostic</a><a href="/decision">Decision</a></nav>
</header>
<main>
<div class="filters">
<input type="date" data-bind-from> <input type="date" data-bind-to>
<input type="text" placeholder="Regions (comma separated)" data-bind-regions>
<button data-on-click="@get('/sse/refresh-all?from='+($from||'')+'&to='+($to||'')+'&regions='+($regions||''))">Apply</button>
</div>
<div class="kpi-row">
<div class="kpi"><div class="label">Total Sales</div><div class="value" data-text="($summary.total_sales||0).toLocaleString()"></div></div>
<div class="kpi"><div class="label">Total Profit</div><div class="value" data-text="($summary.total_profit||0).toLocaleString()"></div></div>
<div class="kpi"><div class="label">Orders</div><div class="value" data-text="($summary.orders||0).toLocaleString()"></div></div>
<div class="kpi"><div class="label">Avg Order Value</div><div class="value" data-text="($summary.avg_order_value||0).toFixed(0)"></div></div>
<div class="kpi"><div class="label">Avg Discount</div><div class="value" data-text="(($summary.avg_discount||0)*100).toFixed(1)+'%'"></div></div>
</div>
<div class="grid">
<div class="card" data-effect="charts.trend('monthly-chart', $monthlyData)"><h2>Monthly Sales and Profit Trend</h2><canvas id="monthly-chart"></canvas></div>
<div class="card" data-effect="charts.bars('category-chart', $categoryData, 'category', [{label:'Sales',key:'sales',color:'#2563eb'},{label:'Profit',key:'profit',color:'#16a34a'}])"><h2>Sales by Category</h2><canvas id="category-chart"></canvas></div>
<div class="card" data-effect="charts.bars('region-chart', $regionData, 'region', [{label:'Sales',key:'sales',color:'#2563eb'},{label:'Profit',key:'profit',color:'#16a34a'}])"><h2>Sales and Profit by Region</h2><canvas id="region-chart"></canvas></div>
<div class="card"><h2>High Discount Loss Orders</h2><div id="loss-orders-content">Loading…</div></div>
</div>
<div class="card" style="margin-top:1rem">
<h2>Insights &amp; Recommendations</h2>
<p data-text="($insights.findings||[]).join(' ')"></p>
<p data-text="($insights.recommendations||[]).join(' ')"></p>
<textarea rows="6" style="width:100%" data-text="$insights.narrative||''" readonly></textarea>
</div>
</main>
</body>
</html>`

const decisionPage = pageHead + `
<body data-signals="{summary:{},categoryData:[],subCategoryData:[],regionData:[],bucketData:[],insights:{}}"
      data-on-load="@get('/sse/refresh-decision')">
<header>
<h1>Sales Decision Dashboard</h1>
<div class="subtitle">Executive view focused on actions, risks, and priorities</div>
<nav><a href="/">Diagnostic</a><a href="/decision">Decision</a></nav>
</header>
<main>
<div class="kpi-row">
<div class="kpi"><div class="label">Total Sales</div><div class="value" data-text="($summary.total_sales||0).toLocaleString()"></div></div>
<div class="kpi"><div class="label">Total Profit</div><div class="value" data-text="($summary.total_profit||0).toLocaleString()"></div></div>
<div class="kpi"><div class="label">High-Discount Loss Orders</div><div class="value" data-text="($summary.loss_order_count||0).toLocaleString()"></div></div>
</div>
<div class="grid">
<div class="card" data-effect="charts.bars('category-chart', $categoryData, 'category', [{label:'Profit',key:'profit',color:'#dc2626'}])"><h2>Profit by Category (Risk Exposure)</h2><canvas id="category-chart"></canvas></div>
<div class="card" data-effect="charts.bars('bucket-chart', $bucketData, 'bucket', [{label:'Profit',key:'profit',color:'#7c3aed'}])"><h2>Profit Impact by Discount Level</h2><canvas id="bucket-chart"></canvas></div>
<div class="card" data-effect="charts.bars('region-chart', $regionData, 'region', [{label:'Profit',key:'profit',color:'#0891b2'}])"><h2>Profit by Region (Action Priority)</h2><canvas id="region-chart"></canvas></div>
<div class="card" data-effect="charts.hbars('subcategory-chart', $subCategoryData, 'sub_category', 'profit', 'Profit', '#dc2626')"><h2>Top Loss-Making Sub-Categories</h2><canvas id="subcategory-chart"></canvas></div>
</div>
<div class="card" style="margin-top:1rem">
<h2>Decision Narrative</h2>
<textarea rows="8" style="width:100%" data-text="$insights.narrative||''" readonly></textarea>
</div>
</main>
</body>
</html>`

var (
	diagnosticTemplate = template.Must(template.New("diagnostic").Parse(diagnosticPage))
	decisionTemplate   = template.Must(template.New("decision").Parse(decisionPage))
)

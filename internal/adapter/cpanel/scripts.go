package cpanel

// File Manager DOM contract
const (
	SelectorListing  = ".yui-dt-data"
	SelectorRows     = ".yui-dt-data tr.yui-dt-rec"
	SelectorEmpty    = ".yui-dt-empty"
	SelectorName     = "span.renameable"
	SelectorIcon     = ".fa-folder"
	SelectorMimeCell = `td[class*="mimetype"]`

	LabelSelectAll   = "Select All"
	LabelDeleteFiles = "Delete Files"
)

// strategy is one way of performing a UI action. Strategies are tried in
// order and the first one whose script returns true wins.
type strategy struct {
	name   string
	script string
}

const (
	existsScript = `function(sel) {
	return document.querySelector(sel) !== null;
}`

	countScript = `function(sel) {
	return document.querySelectorAll(sel).length;
}`

	snapshotScript = `function(sel) {
	const el = document.querySelector(sel);
	return el ? el.outerHTML : "";
}`

	bodyTextScript = `function() {
	return (document.body && document.body.innerText) || "";
}`
)

// findRenameableRow locates the row whose name span matches exactly
const findRenameableRow = `
	const findRenameableRow = (name) => {
		for (const span of document.querySelectorAll('span.renameable')) {
			if ((span.textContent || '').trim() === name || span.getAttribute('title') === name) {
				return span.closest('tr');
			}
		}
		return null;
	};`

// findAnyRow extends findRenameableRow with a link-text match
const findAnyRow = findRenameableRow + `
	const findRow = (name) => {
		const row = findRenameableRow(name);
		if (row) {
			return row;
		}
		for (const link of document.querySelectorAll('a')) {
			if ((link.textContent || '').trim() === name) {
				return link.closest('tr') || link.closest('[class*="row"]') ||
					(link.parentElement && link.parentElement.parentElement);
			}
		}
		return null;
	};`

var selectAllStrategies = []strategy{
	{name: "select-all-text", script: `function(label) {
	for (const el of document.querySelectorAll('a, button, span')) {
		if ((el.textContent || '').trim() === label) {
			el.click();
			return true;
		}
	}
	return false;
}`},
	{name: "select-all-title", script: `function(label) {
	const el = document.querySelector('[title="' + CSS.escape(label) + '"]');
	if (!el) {
		return false;
	}
	el.click();
	return true;
}`},
}

var selectRowStrategies = []strategy{
	{name: "checkbox", script: `function(name) {` + findAnyRow + `
	const row = findRow(name);
	if (!row) {
		return false;
	}
	const box = row.querySelector('input[type="checkbox"]');
	if (!box || box.checked) {
		return false;
	}
	box.click();
	return true;
}`},
	{name: "row-click", script: `function(name) {` + findAnyRow + `
	const row = findRow(name);
	if (!row || row.classList.contains('selected') || row.classList.contains('yui-dt-selected')) {
		return false;
	}
	row.click();
	return true;
}`},
}

const clearSelectionScript = `function() {
	const rows = document.querySelectorAll('tr.yui-dt-selected');
	rows.forEach((row) => row.classList.remove('yui-dt-selected'));
	return rows.length;
}`

const markRowScript = `function(name) {` + findRenameableRow + `
	const row = findRenameableRow(name);
	if (!row) {
		return false;
	}
	row.classList.add('yui-dt-selected');
	row.click();
	return true;
}`

var deleteStrategies = []strategy{
	{name: "action-handler", script: `function() {
	if (typeof actionHandler !== 'function') {
		return false;
	}
	actionHandler('delete');
	return true;
}`},
	{name: "action-delete-item", script: `function() {
	const li = document.querySelector('#action-delete, li[id="action-delete"]');
	if (!li) {
		return false;
	}
	li.classList.remove('disabled');
	li.click();
	return true;
}`},
	{name: "delete-link", script: `function() {
	const link = document.querySelector('a[title="Delete"]');
	if (!link) {
		return false;
	}
	link.click();
	return true;
}`},
}

var confirmStrategies = []strategy{
	{name: "dialog-default-button", script: `function(label) {
	const dialog = document.querySelector('#delete, #delete_c, .yui-dialog');
	const button = dialog && dialog.querySelector('button.default');
	if (!button) {
		return false;
	}
	button.click();
	return true;
}`},
	{name: "dialog-label", script: `function(label) {
	const dialog = document.querySelector('#delete, #delete_c, .yui-dialog');
	if (!dialog) {
		return false;
	}
	for (const button of dialog.querySelectorAll('button')) {
		if ((button.textContent || '').trim() === label) {
			button.click();
			return true;
		}
	}
	return false;
}`},
	{name: "any-label", script: `function(label) {
	for (const button of document.querySelectorAll('button')) {
		if ((button.textContent || '').trim() === label) {
			button.click();
			return true;
		}
	}
	return false;
}`},
}
